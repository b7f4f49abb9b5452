package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrUserExists = errors.New("user already exists")
)

// uniqueViolation is the Postgres SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

type Users interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetBylogin(ctx context.Context, login string) (int, string, error)
}

// Run is one stored erosion calculation.
type Run struct {
	ID        int64           `json:"id"`
	UserID    int             `json:"user_id"`
	RequestID string          `json:"request_id"`
	Success   bool            `json:"success"`
	RiskLevel string          `json:"risk_level"`
	CreatedAt time.Time       `json:"created_at"`
	Request   json.RawMessage `json:"request,omitempty"`
	Response  json.RawMessage `json:"response,omitempty"`
}

type Runs interface {
	SaveRun(ctx context.Context, run Run) (int64, error)
	ListRuns(ctx context.Context, userID, limit int) ([]Run, error)
	GetRun(ctx context.Context, userID int, id int64) (Run, error)
}

type Repository interface {
	Users
	Runs
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		login TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS erosion_runs (
		id BIGSERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		request_id TEXT NOT NULL,
		success BOOLEAN NOT NULL,
		risk_level TEXT NOT NULL DEFAULT '',
		request JSONB NOT NULL,
		response JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS erosion_runs_user_idx ON erosion_runs (user_id, created_at DESC)`,
}

// Migrate creates the tables when they do not exist yet.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	if isUniqueViolation(err) {
		return 0, ErrUserExists
	}
	return id, err
}

func (r *PostgresRepository) GetBylogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := "SELECT id, password FROM users WHERE login=$1"

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", ErrNotFound
	}
	if err != nil {
		return 0, "", err
	}
	return id, hash, nil
}

func (r *PostgresRepository) SaveRun(ctx context.Context, run Run) (int64, error) {
	var id int64
	query := `INSERT INTO erosion_runs (user_id, request_id, success, risk_level, request, response)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		run.UserID, run.RequestID, run.Success, run.RiskLevel, []byte(run.Request), []byte(run.Response),
	).Scan(&id)
	return id, err
}

// ListRuns returns the newest runs of a user without their documents.
func (r *PostgresRepository) ListRuns(ctx context.Context, userID, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, user_id, request_id, success, risk_level, created_at
		FROM erosion_runs WHERE user_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.UserID, &run.RequestID, &run.Success, &run.RiskLevel, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *PostgresRepository) GetRun(ctx context.Context, userID int, id int64) (Run, error) {
	var run Run
	var req, resp []byte
	query := `SELECT id, user_id, request_id, success, risk_level, created_at, request, response
		FROM erosion_runs WHERE id=$1 AND user_id=$2`
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&run.ID, &run.UserID, &run.RequestID, &run.Success, &run.RiskLevel, &run.CreatedAt, &req, &resp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, err
	}
	run.Request, run.Response = req, resp
	return run, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
