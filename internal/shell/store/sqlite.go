package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/artpar/aptmgr/internal/core/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens the database with foreign keys enabled and runs
// migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", withForeignKeys(dsn))
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to open database", ErrConnectionFailed)
	}

	// SQLite serializes writers anyway, and an in-memory database exists
	// per connection, so the pool must stay at one.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// withForeignKeys appends the foreign-key pragma to the DSN, which may
// already carry its own query parameters.
func withForeignKeys(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// User Operations
// =============================================================================

type userRow struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
}

func (s *SQLiteStore) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, username, password_hash FROM users WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStoreError("FindUserByUsername", "user", username, "not found", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user by username: %w", err)
	}

	return &domain.User{ID: row.ID, Username: row.Username, PasswordHash: row.PasswordHash}, nil
}

// EnsureUser inserts the user unless the username is already taken. Existing
// users keep their stored credential; this path never rotates passwords.
func (s *SQLiteStore) EnsureUser(ctx context.Context, username, passwordHash string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)
		 ON CONFLICT (username) DO NOTHING`, username, passwordHash)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// =============================================================================
// Apartment Operations
// =============================================================================

type apartmentRow struct {
	ID           int64   `db:"id"`
	UnitNumber   string  `db:"unit_number"`
	BuildingName string  `db:"building_name"`
	Rent         float64 `db:"rent"`
}

func (r apartmentRow) toDomain() *domain.Apartment {
	return &domain.Apartment{
		ID:           r.ID,
		UnitNumber:   r.UnitNumber,
		BuildingName: r.BuildingName,
		Rent:         r.Rent,
	}
}

// apartmentTenantRow is one row of the left-joined apartment listing.
type apartmentTenantRow struct {
	ApartmentID  int64          `db:"apartment_id"`
	UnitNumber   string         `db:"unit_number"`
	BuildingName string         `db:"building_name"`
	Rent         float64        `db:"rent"`
	TenantID     sql.NullInt64  `db:"tenant_id"`
	TenantName   sql.NullString `db:"tenant_name"`
}

// ListApartments returns every apartment with its tenants nested, ordered by
// building name, then unit number, then tenant name. Apartments without
// tenants appear exactly once with an empty tenant list.
func (s *SQLiteStore) ListApartments(ctx context.Context) ([]domain.Apartment, error) {
	var rows []apartmentTenantRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT a.id AS apartment_id, a.unit_number, a.building_name, a.rent,
		       t.id AS tenant_id, t.name AS tenant_name
		FROM apartments a
		LEFT JOIN tenants t ON a.id = t.apartment_id
		ORDER BY a.building_name, a.unit_number, t.name`)
	if err != nil {
		return nil, fmt.Errorf("list apartments: %w", err)
	}

	return collapseApartmentRows(rows), nil
}

// collapseApartmentRows folds the ordered joined rows into apartments with
// nested tenants, keyed by apartment ID and preserving first-seen order.
func collapseApartmentRows(rows []apartmentTenantRow) []domain.Apartment {
	index := make(map[int64]int, len(rows))
	apartments := make([]domain.Apartment, 0, len(rows))

	for _, row := range rows {
		i, seen := index[row.ApartmentID]
		if !seen {
			i = len(apartments)
			index[row.ApartmentID] = i
			apartments = append(apartments, domain.Apartment{
				ID:           row.ApartmentID,
				UnitNumber:   row.UnitNumber,
				BuildingName: row.BuildingName,
				Rent:         row.Rent,
				Tenants:      []domain.Tenant{},
			})
		}
		if row.TenantID.Valid {
			apartments[i].Tenants = append(apartments[i].Tenants, domain.Tenant{
				ID:           row.TenantID.Int64,
				Name:         row.TenantName.String,
				ApartmentID:  row.ApartmentID,
				UnitNumber:   row.UnitNumber,
				BuildingName: row.BuildingName,
			})
		}
	}

	return apartments
}

func (s *SQLiteStore) FindApartment(ctx context.Context, id int64) (*domain.Apartment, error) {
	var row apartmentRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, unit_number, building_name, rent FROM apartments WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStoreError("FindApartment", "apartment", formatID(id), "not found", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find apartment: %w", err)
	}

	return row.toDomain(), nil
}

func (s *SQLiteStore) FindApartmentByUnitAndBuilding(ctx context.Context, unitNumber, buildingName string) (*domain.Apartment, error) {
	var row apartmentRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, unit_number, building_name, rent FROM apartments
		 WHERE unit_number = ? AND building_name = ?`, unitNumber, buildingName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStoreError("FindApartmentByUnitAndBuilding", "apartment",
			unitNumber+"/"+buildingName, "not found", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find apartment by unit and building: %w", err)
	}

	return row.toDomain(), nil
}

func (s *SQLiteStore) CreateApartment(ctx context.Context, apt *domain.Apartment) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO apartments (unit_number, building_name, rent) VALUES (?, ?, ?)`,
		apt.UnitNumber, apt.BuildingName, apt.Rent)
	if err != nil {
		return mapApartmentWriteError("CreateApartment", apt, err)
	}

	if id, err := res.LastInsertId(); err == nil {
		apt.ID = id
	}
	return nil
}

func (s *SQLiteStore) UpdateApartment(ctx context.Context, apt *domain.Apartment) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE apartments SET unit_number = ?, building_name = ?, rent = ? WHERE id = ?`,
		apt.UnitNumber, apt.BuildingName, apt.Rent, apt.ID)
	if err != nil {
		return mapApartmentWriteError("UpdateApartment", apt, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return NewStoreError("UpdateApartment", "apartment", formatID(apt.ID), "not found", ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) DeleteApartment(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM apartments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete apartment: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return NewStoreError("DeleteApartment", "apartment", formatID(id), "not found", ErrNotFound)
	}
	return nil
}

// mapApartmentWriteError translates SQLite constraint failures into sentinel
// errors. The unique index on (unit_number, building_name) is the
// authoritative uniqueness check.
func mapApartmentWriteError(op string, apt *domain.Apartment, err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed: apartments.unit_number") {
		return NewStoreError(op, "apartment", apt.UnitNumber+"/"+apt.BuildingName,
			"duplicate unit and building", ErrDuplicateApartment)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// =============================================================================
// Tenant Operations
// =============================================================================

type tenantRow struct {
	ID           int64  `db:"id"`
	Name         string `db:"name"`
	ApartmentID  int64  `db:"apartment_id"`
	UnitNumber   string `db:"unit_number"`
	BuildingName string `db:"building_name"`
}

func (r tenantRow) toDomain() domain.Tenant {
	return domain.Tenant{
		ID:           r.ID,
		Name:         r.Name,
		ApartmentID:  r.ApartmentID,
		UnitNumber:   r.UnitNumber,
		BuildingName: r.BuildingName,
	}
}

// ListTenants returns every tenant joined to its owning apartment, ordered by
// building name, then unit number, then tenant name.
func (s *SQLiteStore) ListTenants(ctx context.Context) ([]domain.Tenant, error) {
	var rows []tenantRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT t.id, t.name, t.apartment_id, a.unit_number, a.building_name
		FROM tenants t
		JOIN apartments a ON t.apartment_id = a.id
		ORDER BY a.building_name, a.unit_number, t.name`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}

	tenants := make([]domain.Tenant, 0, len(rows))
	for _, row := range rows {
		tenants = append(tenants, row.toDomain())
	}
	return tenants, nil
}

func (s *SQLiteStore) FindTenant(ctx context.Context, id int64) (*domain.Tenant, error) {
	var row tenantRow
	err := s.db.GetContext(ctx, &row, `
		SELECT t.id, t.name, t.apartment_id, a.unit_number, a.building_name
		FROM tenants t
		JOIN apartments a ON t.apartment_id = a.id
		WHERE t.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStoreError("FindTenant", "tenant", formatID(id), "not found", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find tenant: %w", err)
	}

	tenant := row.toDomain()
	return &tenant, nil
}

func (s *SQLiteStore) CreateTenant(ctx context.Context, tenant *domain.Tenant) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tenants (name, apartment_id) VALUES (?, ?)`,
		tenant.Name, tenant.ApartmentID)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return NewStoreError("CreateTenant", "tenant", "",
				"apartment "+formatID(tenant.ApartmentID)+" does not exist", ErrForeignKey)
		}
		return fmt.Errorf("create tenant: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		tenant.ID = id
	}
	return nil
}

func (s *SQLiteStore) UpdateTenant(ctx context.Context, id int64, name string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tenants SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return NewStoreError("UpdateTenant", "tenant", formatID(id), "not found", ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) DeleteTenant(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return NewStoreError("DeleteTenant", "tenant", formatID(id), "not found", ErrNotFound)
	}
	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
