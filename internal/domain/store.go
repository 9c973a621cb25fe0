// Package domain holds the session, user and store models.
package domain

import (
	"encoding/json"
	"fmt"
)

// StoreKind tags a Store as top-level or branch.
type StoreKind int

const (
	KindTopLevel StoreKind = iota
	KindBranch
)

func (k StoreKind) String() string {
	switch k {
	case KindTopLevel:
		return "top-level"
	case KindBranch:
		return "branch"
	default:
		return "unknown"
	}
}

// OpeningHours is one day's trading window.
type OpeningHours struct {
	Day    string `json:"day"`
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed,omitempty"`
}

// PaymentInfo is a payout destination attached to a store.
type PaymentInfo struct {
	BankName      string `json:"bankName"`
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	BankCode      string `json:"bankCode,omitempty"`
}

// Store is a business the user owns or manages. A branch names its owning
// store through ParentStoreID; top-level stores may nest their branches.
type Store struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	StoreLink     string         `json:"storeLink,omitempty"`
	LogoURL       string         `json:"logoUrl,omitempty"`
	Owner         string         `json:"owner,omitempty"`
	Kind          StoreKind      `json:"-"`
	ParentStoreID string         `json:"parentStoreId,omitempty"`
	OpeningHours  []OpeningHours `json:"openingHours,omitempty"`
	PaymentInfo   []PaymentInfo  `json:"paymentInfo,omitempty"`
	Branches      []Store        `json:"branches,omitempty"`
}

// IsBranch reports whether the store is a branch.
func (s Store) IsBranch() bool {
	return s.Kind == KindBranch
}

// Clone returns a deep copy of the store and its nested branches.
func (s Store) Clone() Store {
	out := s
	out.OpeningHours = append([]OpeningHours(nil), s.OpeningHours...)
	out.PaymentInfo = append([]PaymentInfo(nil), s.PaymentInfo...)
	out.Branches = cloneStores(s.Branches)
	return out
}

// NewTopLevel builds a top-level store.
func NewTopLevel(id, name string) Store {
	return Store{ID: id, Name: name, Kind: KindTopLevel}
}

// NewBranch builds a branch of parentID.
func NewBranch(id, name, parentID string) Store {
	return Store{ID: id, Name: name, Kind: KindBranch, ParentStoreID: parentID}
}

// wireStore mirrors the backend payload, which uses several spellings for
// the same fields.
type wireStore struct {
	ID            string          `json:"id"`
	MongoID       string          `json:"_id"`
	Name          string          `json:"name"`
	StoreLink     string          `json:"storeLink"`
	Slug          string          `json:"slug"`
	LogoURL       string          `json:"logoUrl"`
	Logo          string          `json:"logo"`
	Owner         json.RawMessage `json:"owner"`
	IsBranch      *bool           `json:"isBranch"`
	LegacyBranch  *bool           `json:"_isBranch"`
	ParentStoreID string          `json:"parentStoreId"`
	ParentStore   json.RawMessage `json:"parentStore"`
	OpeningHours  []OpeningHours  `json:"openingHours"`
	PaymentInfo   []PaymentInfo   `json:"paymentInfo"`
	Branches      []Store         `json:"branches"`
}

// UnmarshalJSON accepts both the canonical and the backend field names.
func (s *Store) UnmarshalJSON(data []byte) error {
	var w wireStore
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode store: %w", err)
	}

	owner, err := refID(w.Owner)
	if err != nil {
		return fmt.Errorf("decode store owner: %w", err)
	}
	parent := w.ParentStoreID
	if parent == "" {
		if parent, err = refID(w.ParentStore); err != nil {
			return fmt.Errorf("decode parent store: %w", err)
		}
	}

	*s = Store{
		ID:            firstNonEmpty(w.ID, w.MongoID),
		Name:          w.Name,
		StoreLink:     firstNonEmpty(w.StoreLink, w.Slug),
		LogoURL:       firstNonEmpty(w.LogoURL, w.Logo),
		Owner:         owner,
		Kind:          KindTopLevel,
		ParentStoreID: parent,
		OpeningHours:  w.OpeningHours,
		PaymentInfo:   w.PaymentInfo,
		Branches:      w.Branches,
	}

	flagged := (w.IsBranch != nil && *w.IsBranch) || (w.LegacyBranch != nil && *w.LegacyBranch)
	if flagged || (w.IsBranch == nil && w.LegacyBranch == nil && parent != "") {
		s.Kind = KindBranch
	}
	// Nested children belong to this store whatever flags they carry.
	for i := range s.Branches {
		s.Branches[i].Kind = KindBranch
		if s.Branches[i].ParentStoreID == "" {
			s.Branches[i].ParentStoreID = s.ID
		}
	}
	return nil
}

// MarshalJSON writes the canonical shape with an explicit isBranch flag.
func (s Store) MarshalJSON() ([]byte, error) {
	type canonical Store
	return json.Marshal(struct {
		canonical
		IsBranch bool `json:"isBranch"`
	}{canonical: canonical(s), IsBranch: s.IsBranch()})
}

// refID decodes a reference that is either a plain id string or a populated
// document carrying _id or id.
func refID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id, nil
	}
	var doc struct {
		ID      string `json:"id"`
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", err
	}
	return firstNonEmpty(doc.ID, doc.MongoID), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// FindStore searches stores depth-first, descending into nested branches.
func FindStore(stores []Store, id string) (Store, bool) {
	if id == "" {
		return Store{}, false
	}
	for _, s := range stores {
		if s.ID == id {
			return s, true
		}
		if found, ok := FindStore(s.Branches, id); ok {
			return found, true
		}
	}
	return Store{}, false
}

// PrimaryStore returns the first top-level store, or the first store of any
// kind when the list holds only branches.
func PrimaryStore(stores []Store) (Store, bool) {
	for _, s := range stores {
		if !s.IsBranch() {
			return s, true
		}
	}
	if len(stores) > 0 {
		return stores[0], true
	}
	return Store{}, false
}
