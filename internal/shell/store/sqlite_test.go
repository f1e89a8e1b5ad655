package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/artpar/aptmgr/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestNewSQLiteStore_DSNWithQueryParams(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?cache=shared"
	store, err := NewSQLiteStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})

	// Foreign keys must still be on when the pragma joins existing params.
	err = store.CreateTenant(context.Background(),
		&domain.Tenant{Name: "Ann Lee", ApartmentID: 42})
	assert.ErrorIs(t, err, ErrForeignKey)
}

func createTestApartment(t *testing.T, store Store, unitNumber, buildingName string, rent float64) *domain.Apartment {
	t.Helper()
	apt := &domain.Apartment{UnitNumber: unitNumber, BuildingName: buildingName, Rent: rent}
	require.NoError(t, store.CreateApartment(context.Background(), apt))
	require.NotZero(t, apt.ID)
	return apt
}

func createTestTenant(t *testing.T, store Store, name string, apartmentID int64) *domain.Tenant {
	t.Helper()
	tenant := &domain.Tenant{Name: name, ApartmentID: apartmentID}
	require.NoError(t, store.CreateTenant(context.Background(), tenant))
	require.NotZero(t, tenant.ID)
	return tenant
}

// =============================================================================
// User Tests
// =============================================================================

func TestEnsureUser_AndFind(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.EnsureUser(ctx, "admin", "hash-1"))

	user, err := store.FindUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, "hash-1", user.PasswordHash)
	assert.NotZero(t, user.ID)
}

func TestEnsureUser_KeepsExistingCredential(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.EnsureUser(ctx, "admin", "hash-1"))
	require.NoError(t, store.EnsureUser(ctx, "admin", "hash-2"))

	user, err := store.FindUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "hash-1", user.PasswordHash)
}

func TestFindUserByUsername_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.FindUserByUsername(context.Background(), "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

// =============================================================================
// Apartment Tests
// =============================================================================

func TestCreateApartment_AndFind(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	apt := createTestApartment(t, store, "101", "Oak Ridge", 850)

	retrieved, err := store.FindApartment(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, apt.ID, retrieved.ID)
	assert.Equal(t, "101", retrieved.UnitNumber)
	assert.Equal(t, "Oak Ridge", retrieved.BuildingName)
	assert.Equal(t, 850.0, retrieved.Rent)
}

func TestCreateApartment_DuplicateNaturalKey(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	createTestApartment(t, store, "101", "Oak Ridge", 850)

	err := store.CreateApartment(ctx, &domain.Apartment{
		UnitNumber: "101", BuildingName: "Oak Ridge", Rent: 900,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateApartment)
}

func TestCreateApartment_SameUnitDifferentBuilding(t *testing.T) {
	store := setupTestStore(t)

	createTestApartment(t, store, "101", "Oak Ridge", 850)
	createTestApartment(t, store, "101", "Maple Court", 700)
}

func TestFindApartment_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.FindApartment(context.Background(), 999)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindApartmentByUnitAndBuilding(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	apt := createTestApartment(t, store, "3B", "Maple Court", 700)

	retrieved, err := store.FindApartmentByUnitAndBuilding(ctx, "3B", "Maple Court")
	require.NoError(t, err)
	assert.Equal(t, apt.ID, retrieved.ID)

	_, err = store.FindApartmentByUnitAndBuilding(ctx, "3B", "Oak Ridge")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateApartment(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	apt := createTestApartment(t, store, "101", "Oak Ridge", 850)

	apt.Rent = 925
	apt.UnitNumber = "102"
	require.NoError(t, store.UpdateApartment(ctx, apt))

	retrieved, err := store.FindApartment(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, "102", retrieved.UnitNumber)
	assert.Equal(t, 925.0, retrieved.Rent)
}

// Keeping an apartment's own natural key on update must not trip the unique
// constraint.
func TestUpdateApartment_SameNaturalKey(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	apt := createTestApartment(t, store, "101", "Oak Ridge", 850)

	apt.Rent = 999
	require.NoError(t, store.UpdateApartment(ctx, apt))
}

func TestUpdateApartment_DuplicateNaturalKey(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	createTestApartment(t, store, "101", "Oak Ridge", 850)
	apt := createTestApartment(t, store, "102", "Oak Ridge", 860)

	apt.UnitNumber = "101"
	err := store.UpdateApartment(ctx, apt)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateApartment)
}

func TestUpdateApartment_NotFound(t *testing.T) {
	store := setupTestStore(t)

	err := store.UpdateApartment(context.Background(), &domain.Apartment{
		ID: 999, UnitNumber: "1", BuildingName: "Nowhere", Rent: 100,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteApartment(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	apt := createTestApartment(t, store, "101", "Oak Ridge", 850)

	require.NoError(t, store.DeleteApartment(ctx, apt.ID))

	_, err := store.FindApartment(ctx, apt.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.DeleteApartment(ctx, apt.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteApartment_CascadesTenants(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	apt := createTestApartment(t, store, "101", "Oak Ridge", 850)
	other := createTestApartment(t, store, "102", "Oak Ridge", 860)
	createTestTenant(t, store, "John", apt.ID)
	createTestTenant(t, store, "Mary", apt.ID)
	keeper := createTestTenant(t, store, "Alice", other.ID)

	require.NoError(t, store.DeleteApartment(ctx, apt.ID))

	tenants, err := store.ListTenants(ctx)
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, keeper.ID, tenants[0].ID)
}

// =============================================================================
// Listing Tests
// =============================================================================

func TestListApartments_NestedTenantsAndOrdering(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// Created out of order; the listing must sort by building, then unit,
	// then tenant name.
	maple := createTestApartment(t, store, "2A", "Maple Court", 700)
	oak2 := createTestApartment(t, store, "102", "Oak Ridge", 860)
	oak1 := createTestApartment(t, store, "101", "Oak Ridge", 850)

	createTestTenant(t, store, "Zoe", oak1.ID)
	createTestTenant(t, store, "Adam", oak1.ID)

	apartments, err := store.ListApartments(ctx)
	require.NoError(t, err)
	require.Len(t, apartments, 3)

	assert.Equal(t, maple.ID, apartments[0].ID)
	assert.Equal(t, oak1.ID, apartments[1].ID)
	assert.Equal(t, oak2.ID, apartments[2].ID)

	// Apartments without tenants still appear exactly once, with an empty
	// (not nil) tenant list.
	assert.NotNil(t, apartments[0].Tenants)
	assert.Empty(t, apartments[0].Tenants)
	assert.Empty(t, apartments[2].Tenants)

	require.Len(t, apartments[1].Tenants, 2)
	assert.Equal(t, "Adam", apartments[1].Tenants[0].Name)
	assert.Equal(t, "Zoe", apartments[1].Tenants[1].Name)
}

func TestListApartments_Empty(t *testing.T) {
	store := setupTestStore(t)

	apartments, err := store.ListApartments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, apartments)
}

func TestListTenants_CarriesApartmentFields(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	oak := createTestApartment(t, store, "101", "Oak Ridge", 850)
	maple := createTestApartment(t, store, "2A", "Maple Court", 700)
	createTestTenant(t, store, "John", oak.ID)
	createTestTenant(t, store, "Alice", maple.ID)

	tenants, err := store.ListTenants(ctx)
	require.NoError(t, err)
	require.Len(t, tenants, 2)

	assert.Equal(t, "Alice", tenants[0].Name)
	assert.Equal(t, "Maple Court", tenants[0].BuildingName)
	assert.Equal(t, "2A", tenants[0].UnitNumber)
	assert.Equal(t, "John", tenants[1].Name)
	assert.Equal(t, "Oak Ridge", tenants[1].BuildingName)
}

// =============================================================================
// Tenant Tests
// =============================================================================

func TestCreateTenant_MissingApartment(t *testing.T) {
	store := setupTestStore(t)

	err := store.CreateTenant(context.Background(), &domain.Tenant{Name: "John", ApartmentID: 999})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForeignKey)
}

func TestFindTenant(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	apt := createTestApartment(t, store, "101", "Oak Ridge", 850)
	tenant := createTestTenant(t, store, "John", apt.ID)

	retrieved, err := store.FindTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "John", retrieved.Name)
	assert.Equal(t, apt.ID, retrieved.ApartmentID)
	assert.Equal(t, "101", retrieved.UnitNumber)
	assert.Equal(t, "Oak Ridge", retrieved.BuildingName)

	_, err = store.FindTenant(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTenant(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	apt := createTestApartment(t, store, "101", "Oak Ridge", 850)
	tenant := createTestTenant(t, store, "John", apt.ID)

	require.NoError(t, store.UpdateTenant(ctx, tenant.ID, "Johnny"))

	retrieved, err := store.FindTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "Johnny", retrieved.Name)

	err = store.UpdateTenant(ctx, 999, "Nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTenant(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	apt := createTestApartment(t, store, "101", "Oak Ridge", 850)
	tenant := createTestTenant(t, store, "John", apt.ID)

	require.NoError(t, store.DeleteTenant(ctx, tenant.ID))

	_, err := store.FindTenant(ctx, tenant.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.DeleteTenant(ctx, tenant.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
