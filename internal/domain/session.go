package domain

// State is the authentication state of a session.
type State int

const (
	StateUnknown State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Session is an immutable view of the session manager's state.
// Token is non-empty iff IsAuthenticated.
type Session struct {
	User            *User
	Token           string
	IsLoading       bool
	IsAuthenticated bool
	State           State
	ActiveStoreID   string
}
