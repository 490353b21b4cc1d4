package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pattr-maidachem/uplink-monitor/models"
)

// SQLiteSwapRepository implements the SwapRepository interface for SQLite
type SQLiteSwapRepository struct {
	db *sql.DB
}

// NewSQLiteSwapRepository creates a new SQLiteSwapRepository
func NewSQLiteSwapRepository(db *sql.DB) *SQLiteSwapRepository {
	return &SQLiteSwapRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteSwapRepository) Close() error {
	return r.db.Close()
}

// Create inserts a new swap entry
func (r *SQLiteSwapRepository) Create(ctx context.Context, entry *models.SwapLogEntry) error {
	if entry.ID == "" {
		entry.ID = GenerateID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	query := `INSERT INTO swap (id, isp, ip, active, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, entry.ID, entry.ISP, entry.IP, boolToInt(entry.Active), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting swap entry: %w", err)
	}
	return nil
}

// FindLatest finds the most recently inserted swap entry
func (r *SQLiteSwapRepository) FindLatest(ctx context.Context) (*models.SwapLogEntry, error) {
	query := `SELECT id, isp, ip, active, created_at FROM swap ORDER BY created_at DESC, rowid DESC LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, query))
}

// FindAll finds swap entries, newest first
func (r *SQLiteSwapRepository) FindAll(ctx context.Context, limit int) ([]*models.SwapLogEntry, error) {
	query := `SELECT id, isp, ip, active, created_at FROM swap ORDER BY created_at DESC, rowid DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying swap entries: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// FindActive finds the currently active entries, newest first
func (r *SQLiteSwapRepository) FindActive(ctx context.Context) ([]*models.SwapLogEntry, error) {
	query := `SELECT id, isp, ip, active, created_at FROM swap WHERE active = 1 ORDER BY created_at DESC, rowid DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying active swap entries: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// RecordTransition flips the currently active row to inactive and
// inserts the new active entry. Both statements run inside one
// transaction so a concurrent reader never sees two active rows, and a
// superseded ISP never stays marked active.
func (r *SQLiteSwapRepository) RecordTransition(ctx context.Context, isp, ip string) (*models.SwapLogEntry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting swap transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE swap SET active = 0 WHERE active = 1`); err != nil {
		return nil, fmt.Errorf("error deactivating previous swap entries: %w", err)
	}

	entry := &models.SwapLogEntry{
		ID:        GenerateID(),
		ISP:       isp,
		IP:        ip,
		Active:    true,
		CreatedAt: time.Now(),
	}

	query := `INSERT INTO swap (id, isp, ip, active, created_at) VALUES (?, ?, ?, 1, ?)`
	if _, err := tx.ExecContext(ctx, query, entry.ID, entry.ISP, entry.IP, entry.CreatedAt); err != nil {
		return nil, fmt.Errorf("error inserting swap entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing swap transaction: %w", err)
	}
	return entry, nil
}

func (r *SQLiteSwapRepository) scanOne(row *sql.Row) (*models.SwapLogEntry, error) {
	var entry models.SwapLogEntry
	var active int
	var createdAt sql.NullTime

	err := row.Scan(&entry.ID, &entry.ISP, &entry.IP, &active, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning swap entry: %w", err)
	}

	entry.Active = active != 0
	if createdAt.Valid {
		entry.CreatedAt = createdAt.Time
	}
	return &entry, nil
}

func (r *SQLiteSwapRepository) scanMany(rows *sql.Rows) ([]*models.SwapLogEntry, error) {
	var entries []*models.SwapLogEntry
	for rows.Next() {
		var entry models.SwapLogEntry
		var active int
		var createdAt sql.NullTime

		if err := rows.Scan(&entry.ID, &entry.ISP, &entry.IP, &active, &createdAt); err != nil {
			return nil, fmt.Errorf("error scanning swap entry: %w", err)
		}

		entry.Active = active != 0
		if createdAt.Valid {
			entry.CreatedAt = createdAt.Time
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating swap entries: %w", err)
	}
	return entries, nil
}

// SQLiteGatewayLogRepository implements the GatewayLogRepository interface for SQLite
type SQLiteGatewayLogRepository struct {
	db *sql.DB
}

// NewSQLiteGatewayLogRepository creates a new SQLiteGatewayLogRepository
func NewSQLiteGatewayLogRepository(db *sql.DB) *SQLiteGatewayLogRepository {
	return &SQLiteGatewayLogRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteGatewayLogRepository) Close() error {
	return r.db.Close()
}

// Create appends a new gateway probe result
func (r *SQLiteGatewayLogRepository) Create(ctx context.Context, entry *models.GatewayLogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	query := `INSERT INTO gateway_log (status, created_at) VALUES (?, ?)`
	result, err := r.db.ExecContext(ctx, query, string(entry.Status), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting gateway log entry: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// FindLatest finds the most recent gateway probe result
func (r *SQLiteGatewayLogRepository) FindLatest(ctx context.Context) (*models.GatewayLogEntry, error) {
	query := `SELECT id, status, created_at FROM gateway_log ORDER BY id DESC LIMIT 1`

	var entry models.GatewayLogEntry
	var status string
	var createdAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query).Scan(&entry.ID, &status, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning gateway log entry: %w", err)
	}

	entry.Status = models.GatewayStatus(status)
	if createdAt.Valid {
		entry.CreatedAt = createdAt.Time
	}
	return &entry, nil
}

// CountByStatusSince counts probe results with the given status inside the window
func (r *SQLiteGatewayLogRepository) CountByStatusSince(ctx context.Context, status models.GatewayStatus, since time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM gateway_log WHERE status = ? AND created_at >= ?`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, string(status), since).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting gateway log entries: %w", err)
	}
	return count, nil
}

// UptimeSince aggregates up/down counts and the uptime percentage over the window
func (r *SQLiteGatewayLogRepository) UptimeSince(ctx context.Context, since time.Time) (*models.GatewayUptime, error) {
	query := `SELECT
		COALESCE(SUM(CASE WHEN status = 'up' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'down' THEN 1 ELSE 0 END), 0)
	FROM gateway_log WHERE created_at >= ?`

	var uptime models.GatewayUptime
	if err := r.db.QueryRowContext(ctx, query, since).Scan(&uptime.UpCount, &uptime.DownCount); err != nil {
		return nil, fmt.Errorf("error aggregating gateway log entries: %w", err)
	}

	total := uptime.UpCount + uptime.DownCount
	if total > 0 {
		uptime.UptimePercent = float64(uptime.UpCount) / float64(total) * 100
	}
	return &uptime, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
