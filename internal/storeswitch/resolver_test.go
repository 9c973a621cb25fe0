package storeswitch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/domain"
	apperrors "github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/errors"
)

func fixtureStores() []domain.Store {
	primary := domain.NewTopLevel("s-1", "Main")
	primary.Branches = []domain.Store{domain.NewBranch("b-1", "Ikeja", "s-1")}
	return []domain.Store{
		primary,
		domain.NewTopLevel("s-2", "Second"),
		domain.NewBranch("b-9", "Orphan listed", "s-404"),
	}
}

func TestResolve_EveryListedID(t *testing.T) {
	stores := fixtureStores()
	for _, id := range []string{"s-1", "s-2", "b-9", "b-1"} {
		res, err := Resolve(stores, ByID(id))
		require.NoError(t, err, id)
		assert.Equal(t, id, res.Store.ID)
		assert.Equal(t, MethodID, res.Method)
	}
}

func TestResolve_BranchToParent(t *testing.T) {
	res, err := Resolve(fixtureStores(), ByStore(domain.NewBranch("b-1", "Ikeja", "s-1")))
	require.NoError(t, err)
	assert.Equal(t, "s-1", res.Store.ID)
	assert.Equal(t, MethodParent, res.Method)
	assert.False(t, res.Degraded())
}

func TestResolve_BranchWithoutParentFallsBack(t *testing.T) {
	branch := domain.NewBranch("b-5", "Lekki", "s-missing")
	res, err := Resolve(fixtureStores(), ByStore(branch))
	require.NoError(t, err)
	assert.Equal(t, "b-5", res.Store.ID)
	assert.True(t, res.Degraded())
}

func TestResolve_TopLevelObjectUsedAsGiven(t *testing.T) {
	explicit := domain.NewTopLevel("s-1", "Main (edited)")
	res, err := Resolve(fixtureStores(), ByStore(explicit))
	require.NoError(t, err)
	assert.Equal(t, "Main (edited)", res.Store.Name)
	assert.Equal(t, MethodObject, res.Method)
}

func TestResolve_UnlistedTopLevelObject(t *testing.T) {
	_, err := Resolve(fixtureStores(), ByStore(domain.NewTopLevel("foreign", "Not mine")))
	assert.ErrorIs(t, err, apperrors.ErrStoreNotFound)
}

func TestResolve_DecodedNestedBranchToParent(t *testing.T) {
	var u domain.User
	require.NoError(t, json.Unmarshal([]byte(`{"stores":[{"_id":"p-1","name":"Main","branches":[{"_id":"b-1","name":"Ikeja"}]}]}`), &u))
	branch, ok := domain.FindStore(u.Stores, "b-1")
	require.True(t, ok)

	res, err := Resolve(u.Stores, ByStore(branch))
	require.NoError(t, err)
	assert.Equal(t, "p-1", res.Store.ID)
	assert.Equal(t, MethodParent, res.Method)
}

func TestResolve_UnknownID(t *testing.T) {
	_, err := Resolve(fixtureStores(), ByID("nonexistent-id"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStoreNotFound)

	_, err = Resolve(nil, ByID(""))
	assert.ErrorIs(t, err, apperrors.ErrStoreNotFound)
}

func TestTarget_String(t *testing.T) {
	assert.Equal(t, "id(s-1)", ByID("s-1").String())
	assert.Equal(t, "store(b-1, branch)", ByStore(domain.NewBranch("b-1", "", "s-1")).String())
}
