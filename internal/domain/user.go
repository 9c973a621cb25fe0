package domain

import (
	"encoding/json"
	"fmt"
)

// User is the authenticated account. A profile refresh replaces it whole.
type User struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Phone            string  `json:"phone"`
	Email            string  `json:"email,omitempty"`
	Stores           []Store `json:"stores"`
	WalletBalance    float64 `json:"walletBalance"`
	ProfileCompleted bool    `json:"profileCompleted,omitempty"`
}

// UnmarshalJSON accepts _id for the id, and businesses as an alias for
// stores.
func (u *User) UnmarshalJSON(data []byte) error {
	var w struct {
		ID               string  `json:"id"`
		MongoID          string  `json:"_id"`
		Name             string  `json:"name"`
		Phone            string  `json:"phone"`
		Email            string  `json:"email"`
		Stores           []Store `json:"stores"`
		Businesses       []Store `json:"businesses"`
		WalletBalance    float64 `json:"walletBalance"`
		ProfileCompleted bool    `json:"profileCompleted"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode user: %w", err)
	}

	stores := w.Stores
	if len(stores) == 0 {
		stores = w.Businesses
	}

	*u = User{
		ID:               firstNonEmpty(w.ID, w.MongoID),
		Name:             w.Name,
		Phone:            w.Phone,
		Email:            w.Email,
		Stores:           stores,
		WalletBalance:    w.WalletBalance,
		ProfileCompleted: w.ProfileCompleted,
	}
	return nil
}

// Clone returns a deep copy so snapshots never share slices with the
// manager's state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.Stores = cloneStores(u.Stores)
	return &out
}

func cloneStores(stores []Store) []Store {
	if stores == nil {
		return nil
	}
	out := make([]Store, len(stores))
	for i, s := range stores {
		out[i] = s.Clone()
	}
	return out
}
