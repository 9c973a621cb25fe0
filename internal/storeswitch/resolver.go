// Package storeswitch resolves a requested store to the store that becomes
// active for the session.
package storeswitch

import (
	"fmt"

	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/domain"
	apperrors "github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/errors"
)

// Target is either a store id or a full store object.
type Target struct {
	id    string
	store *domain.Store
}

// ByID targets a store by id.
func ByID(id string) Target {
	return Target{id: id}
}

// ByStore targets an explicit store object.
func ByStore(s domain.Store) Target {
	return Target{store: &s}
}

// String describes the target for logs.
func (t Target) String() string {
	if t.store != nil {
		return fmt.Sprintf("store(%s, %s)", t.store.ID, t.store.Kind)
	}
	return "id(" + t.id + ")"
}

// Method records how a resolution was reached.
type Method string

const (
	MethodObject   Method = "object"
	MethodParent   Method = "parent"
	MethodDegraded Method = "degraded"
	MethodID       Method = "id"
)

// Resolution is the store that should become active.
type Resolution struct {
	Store  domain.Store
	Method Method
}

// Degraded reports a branch whose parent could not be found.
func (r Resolution) Degraded() bool {
	return r.Method == MethodDegraded
}

// Resolve applies the switch rules against the user's stores:
//   - a branch object resolves to its parent when the parent is listed,
//     otherwise to the branch itself;
//   - a top-level object is used as given when its id is listed;
//   - an id is searched depth-first through stores and nested branches.
//
// An unknown id or unlisted top-level object returns errors.ErrStoreNotFound.
func Resolve(stores []domain.Store, target Target) (Resolution, error) {
	if target.store != nil {
		s := *target.store
		if !s.IsBranch() {
			if _, ok := domain.FindStore(stores, s.ID); !ok {
				return Resolution{}, fmt.Errorf("%w: %q", apperrors.ErrStoreNotFound, s.ID)
			}
			return Resolution{Store: s, Method: MethodObject}, nil
		}
		if parent, ok := domain.FindStore(stores, s.ParentStoreID); ok {
			return Resolution{Store: parent, Method: MethodParent}, nil
		}
		return Resolution{Store: s, Method: MethodDegraded}, nil
	}

	found, ok := domain.FindStore(stores, target.id)
	if !ok {
		return Resolution{}, fmt.Errorf("%w: %q", apperrors.ErrStoreNotFound, target.id)
	}
	return Resolution{Store: found, Method: MethodID}, nil
}
