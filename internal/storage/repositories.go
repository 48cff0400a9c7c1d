package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNotFound = errors.New("record not found")
)

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// ModelRepository handles model CRUD operations.
type ModelRepository struct {
	db DB
}

// NewModelRepository creates a new model repository.
func NewModelRepository(db DB) *ModelRepository {
	return &ModelRepository{db: db}
}

// Create stores a new model.
func (r *ModelRepository) Create(ctx context.Context, m *Model) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO models (id, name, source_path, fingerprint, schema_name, element_count, document, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID.String(), m.Name, m.SourcePath, m.Fingerprint, m.Schema,
		m.ElementCount, string(m.Document), m.CreatedAt,
	)
	return err
}

const modelColumns = `id, name, source_path, fingerprint, schema_name, element_count, document, created_at`

// GetByID retrieves a model by ID.
func (r *ModelRepository) GetByID(ctx context.Context, id uuid.UUID) (*Model, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+modelColumns+` FROM models WHERE id = $1`, id.String())
	return scanModel(row)
}

// GetByFingerprint retrieves the model imported from an identical export.
func (r *ModelRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*Model, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+modelColumns+` FROM models WHERE fingerprint = $1`, fingerprint)
	return scanModel(row)
}

// List lists models, newest first, without their documents.
func (r *ModelRepository) List(ctx context.Context) ([]*Model, error) {
	query := `
		SELECT id, name, source_path, fingerprint, schema_name, element_count, created_at
		FROM models
		ORDER BY created_at DESC, name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var models []*Model
	for rows.Next() {
		m := &Model{}
		var id string
		if err := rows.Scan(&id, &m.Name, &m.SourcePath, &m.Fingerprint, &m.Schema, &m.ElementCount, &m.CreatedAt); err != nil {
			return nil, err
		}
		if m.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, rows.Err()
}

// Delete removes a model and its query log.
func (r *ModelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM query_log WHERE model_id = $1`, id.String()); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM models WHERE id = $1`, id.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanModel(row *sql.Row) (*Model, error) {
	m := &Model{}
	var id, document string
	err := row.Scan(&id, &m.Name, &m.SourcePath, &m.Fingerprint, &m.Schema, &m.ElementCount, &document, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if m.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	m.Document = []byte(document)
	return m, nil
}

// QueryLogRepository handles the question log.
type QueryLogRepository struct {
	db DB
}

// NewQueryLogRepository creates a new query log repository.
func NewQueryLogRepository(db DB) *QueryLogRepository {
	return &QueryLogRepository{db: db}
}

// Create appends an entry to the log.
func (r *QueryLogRepository) Create(ctx context.Context, e *QueryLogEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now().UTC()

	var value sql.NullFloat64
	if e.Value != nil {
		value = sql.NullFloat64{Float64: *e.Value, Valid: true}
	}

	query := `
		INSERT INTO query_log (id, model_id, session_id, question, intent, value, unit, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID.String(), e.ModelID.String(), e.SessionID, e.Question, e.Intent,
		value, e.Unit, e.Confidence, e.CreatedAt,
	)
	return err
}

// ListByModel returns the latest entries for a model, newest first.
func (r *QueryLogRepository) ListByModel(ctx context.Context, modelID uuid.UUID, limit int) ([]*QueryLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, model_id, session_id, question, intent, value, unit, confidence, created_at
		FROM query_log
		WHERE model_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, modelID.String(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*QueryLogEntry
	for rows.Next() {
		e := &QueryLogEntry{}
		var id, model string
		var value sql.NullFloat64
		if err := rows.Scan(&id, &model, &e.SessionID, &e.Question, &e.Intent, &value, &e.Unit, &e.Confidence, &e.CreatedAt); err != nil {
			return nil, err
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if e.ModelID, err = uuid.Parse(model); err != nil {
			return nil, err
		}
		if value.Valid {
			v := value.Float64
			e.Value = &v
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
