package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
)

const (
	schemaLockID       = int64(2025040201)
	defaultListLimit   = 100
	maxListLimit       = 1000
	recordSelectColumn = `id, file_name, mime_type, storage_key, status, notice, info, violation_type, created_at, updated_at`
)

type RecordRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db, now: time.Now}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *RecordRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	if _, err := tx.ExecContext(ctx, schemaDDL()); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func schemaDDL() string {
	quoted := make([]string, 0, len(domain.ViolationTypes()))
	for _, v := range domain.ViolationTypes() {
		quoted = append(quoted, "'"+string(v)+"'")
	}
	return `
CREATE TABLE IF NOT EXISTS records (
	id TEXT PRIMARY KEY,
	file_name TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_key TEXT NOT NULL,
	status TEXT NOT NULL,
	notice TEXT NOT NULL DEFAULT '',
	info JSONB NOT NULL,
	metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
	violation_type TEXT NOT NULL CHECK (violation_type IN (` + strings.Join(quoted, ", ") + `)),
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_violation_type ON records(violation_type);
CREATE INDEX IF NOT EXISTS idx_records_created_at ON records(created_at DESC);
`
}

// SaveRecord upserts rec by ID. The violation type is normalized onto the closed set before writing.
func (r *RecordRepository) SaveRecord(ctx context.Context, rec *domain.SalaysayRecord) error {
	if rec == nil || strings.TrimSpace(rec.ID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "save record", errors.New("record id is required"))
	}

	now := r.now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	rec.Info.ViolationType = rec.ViolationType()

	infoJSON, err := json.Marshal(rec.Info)
	if err != nil {
		return fmt.Errorf("marshal record info: %w", err)
	}
	metadataJSON, err := json.Marshal(rec.Metadata())
	if err != nil {
		return fmt.Errorf("marshal record metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO records (
	id, file_name, mime_type, storage_key, status, notice, info, metadata, violation_type, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
	status = EXCLUDED.status,
	notice = EXCLUDED.notice,
	info = EXCLUDED.info,
	metadata = EXCLUDED.metadata,
	violation_type = EXCLUDED.violation_type,
	updated_at = EXCLUDED.updated_at
`,
		rec.ID, rec.FileName, rec.MimeType, rec.StorageKey, string(rec.Status), rec.Notice,
		infoJSON, metadataJSON, string(rec.Info.ViolationType), rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

func (r *RecordRepository) GetRecord(ctx context.Context, id string) (*domain.SalaysayRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+recordSelectColumn+`
FROM records
WHERE id = $1
`, id)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get record", fmt.Errorf("record %s", id))
		}
		return nil, err
	}
	return rec, nil
}

// ListRecords returns the newest records first.
func (r *RecordRepository) ListRecords(ctx context.Context, limit int) ([]domain.SalaysayRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)

	rows, err := r.db.QueryContext(ctx, `
SELECT `+recordSelectColumn+`
FROM records
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SalaysayRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.SalaysayRecord, error) {
	var rec domain.SalaysayRecord
	var status, violation string
	var infoRaw []byte

	err := row.Scan(
		&rec.ID, &rec.FileName, &rec.MimeType, &rec.StorageKey, &status, &rec.Notice,
		&infoRaw, &violation, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan record: %w", err)
	}

	if err := json.Unmarshal(infoRaw, &rec.Info); err != nil {
		return nil, fmt.Errorf("unmarshal record info: %w", err)
	}
	rec.Status = domain.RecordStatus(status)
	rec.Info.ViolationType = domain.NormalizeViolationType(violation)
	return &rec, nil
}
