package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pattr-maidachem/uplink-monitor/models"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repository defines a common interface for all repositories
type Repository interface {
	Close() error
}

// SwapRepository defines the interface for ISP transition log operations
type SwapRepository interface {
	Repository
	Create(ctx context.Context, entry *models.SwapLogEntry) error
	FindLatest(ctx context.Context) (*models.SwapLogEntry, error)
	FindAll(ctx context.Context, limit int) ([]*models.SwapLogEntry, error)
	FindActive(ctx context.Context) ([]*models.SwapLogEntry, error)
	// RecordTransition deactivates the currently active row and inserts
	// the new active entry inside a single transaction.
	RecordTransition(ctx context.Context, isp, ip string) (*models.SwapLogEntry, error)
}

// GatewayLogRepository defines the interface for gateway probe log operations
type GatewayLogRepository interface {
	Repository
	Create(ctx context.Context, entry *models.GatewayLogEntry) error
	FindLatest(ctx context.Context) (*models.GatewayLogEntry, error)
	CountByStatusSince(ctx context.Context, status models.GatewayStatus, since time.Time) (int64, error)
	UptimeSince(ctx context.Context, since time.Time) (*models.GatewayUptime, error)
}

// RepositoryFactory creates repositories backed by the shared SQLite handle
type RepositoryFactory struct {
	SQLiteDB *sql.DB
	DBName   string
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(sqliteDB *sql.DB, dbName string) *RepositoryFactory {
	return &RepositoryFactory{
		SQLiteDB: sqliteDB,
		DBName:   dbName,
	}
}

// NewSwapRepository creates a new swap repository
func (f *RepositoryFactory) NewSwapRepository() SwapRepository {
	return NewSQLiteSwapRepository(f.SQLiteDB)
}

// NewGatewayLogRepository creates a new gateway log repository
func (f *RepositoryFactory) NewGatewayLogRepository() GatewayLogRepository {
	return NewSQLiteGatewayLogRepository(f.SQLiteDB)
}

// GenerateID generates a unique ID for a record
func GenerateID() string {
	return uuid.New().String()
}
