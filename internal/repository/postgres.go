package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cartagent/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresStore persists task records in PostgreSQL so task status
// survives restarts and can be shared across replicas.
type PostgresStore struct {
	db *sqlx.DB
}

const createTasksTable = `
CREATE TABLE IF NOT EXISTS agent_tasks (
	id           TEXT PRIMARY KEY,
	kind         TEXT NOT NULL,
	status       TEXT NOT NULL,
	query        TEXT NOT NULL DEFAULT '',
	message      TEXT NOT NULL DEFAULT '',
	cart_result  JSONB,
	list_result  JSONB,
	created_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
)`

// NewPostgresStore connects to PostgreSQL and ensures the task table
// exists.
func NewPostgresStore(dsn string, maxConn, maxIdleConn int) (*PostgresStore, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(createTasksTable); err != nil {
		return nil, fmt.Errorf("failed to create tasks table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// taskRow is the database shape of a TaskRecord; results are stored as
// JSONB documents.
type taskRow struct {
	ID          string       `db:"id"`
	Kind        string       `db:"kind"`
	Status      string       `db:"status"`
	Query       string       `db:"query"`
	Message     string       `db:"message"`
	CartResult  []byte       `db:"cart_result"`
	ListResult  []byte       `db:"list_result"`
	CreatedAt   time.Time    `db:"created_at"`
	CompletedAt sql.NullTime `db:"completed_at"`
}

func toRow(record *model.TaskRecord) (*taskRow, error) {
	row := &taskRow{
		ID:        record.ID,
		Kind:      record.Kind,
		Status:    record.Status,
		Query:     record.Query,
		Message:   record.Message,
		CreatedAt: record.CreatedAt,
	}
	if record.CompletedAt != nil {
		row.CompletedAt = sql.NullTime{Time: *record.CompletedAt, Valid: true}
	}
	if record.CartResult != nil {
		data, err := json.Marshal(record.CartResult)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal cart result: %w", err)
		}
		row.CartResult = data
	}
	if record.ListResult != nil {
		data, err := json.Marshal(record.ListResult)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal list result: %w", err)
		}
		row.ListResult = data
	}
	return row, nil
}

func fromRow(row *taskRow) (*model.TaskRecord, error) {
	record := &model.TaskRecord{
		ID:        row.ID,
		Kind:      row.Kind,
		Status:    row.Status,
		Query:     row.Query,
		Message:   row.Message,
		CreatedAt: row.CreatedAt,
	}
	if row.CompletedAt.Valid {
		t := row.CompletedAt.Time
		record.CompletedAt = &t
	}
	if len(row.CartResult) > 0 {
		var result model.CartResult
		if err := json.Unmarshal(row.CartResult, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cart result: %w", err)
		}
		record.CartResult = &result
	}
	if len(row.ListResult) > 0 {
		var result model.ProductListResult
		if err := json.Unmarshal(row.ListResult, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal list result: %w", err)
		}
		record.ListResult = &result
	}
	return record, nil
}

// Put inserts or replaces a task record.
func (s *PostgresStore) Put(ctx context.Context, record *model.TaskRecord) error {
	row, err := toRow(record)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO agent_tasks (id, kind, status, query, message, cart_result, list_result, created_at, completed_at)
		VALUES (:id, :kind, :status, :query, :message, :cart_result, :list_result, :created_at, :completed_at)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			message = EXCLUDED.message,
			cart_result = EXCLUDED.cart_result,
			list_result = EXCLUDED.list_result,
			completed_at = EXCLUDED.completed_at`

	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to upsert task %s: %w", record.ID, err)
	}
	return nil
}

// Get returns the record for a task ID, or ErrTaskNotFound.
func (s *PostgresStore) Get(ctx context.Context, id string) (*model.TaskRecord, error) {
	var row taskRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM agent_tasks WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query task %s: %w", id, err)
	}
	return fromRow(&row)
}

// Delete removes a task record.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM agent_tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	return nil
}

// List returns all known records, newest first.
func (s *PostgresStore) List(ctx context.Context) ([]*model.TaskRecord, error) {
	var rows []taskRow
	err := s.db.SelectContext(ctx, &rows, `SELECT * FROM agent_tasks ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	records := make([]*model.TaskRecord, 0, len(rows))
	for i := range rows {
		record, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
