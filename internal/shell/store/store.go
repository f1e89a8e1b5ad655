package store

import (
	"context"

	"github.com/artpar/aptmgr/internal/core/domain"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store defines the persistence interface for aptmgr entities. Every
// operation is a single round trip on its own connection acquisition; there
// are no transactions spanning calls. Relationship integrity (cascade delete
// of tenants, apartment uniqueness) is enforced by the store schema.
type Store interface {
	// User lookups. Users exist only for authentication; EnsureUser seeds the
	// bootstrap account and never rotates an existing credential.
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	EnsureUser(ctx context.Context, username, passwordHash string) error

	// Apartment operations. ListApartments nests each apartment's tenants,
	// ordered by building name, then unit number, then tenant name.
	ListApartments(ctx context.Context) ([]domain.Apartment, error)
	FindApartment(ctx context.Context, id int64) (*domain.Apartment, error)
	FindApartmentByUnitAndBuilding(ctx context.Context, unitNumber, buildingName string) (*domain.Apartment, error)
	CreateApartment(ctx context.Context, apt *domain.Apartment) error
	UpdateApartment(ctx context.Context, apt *domain.Apartment) error
	DeleteApartment(ctx context.Context, id int64) error

	// Tenant operations. Reads join the owning apartment so tenant records
	// always carry their unit and building for display.
	ListTenants(ctx context.Context) ([]domain.Tenant, error)
	FindTenant(ctx context.Context, id int64) (*domain.Tenant, error)
	CreateTenant(ctx context.Context, tenant *domain.Tenant) error
	UpdateTenant(ctx context.Context, id int64, name string) error
	DeleteTenant(ctx context.Context, id int64) error

	// Lifecycle
	Close() error
}
