package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"vulnDemo/internal/db"
	"vulnDemo/models"
)

// Opener returns a fresh database handle. Every repository call opens its own
// handle and closes it before returning.
type Opener func() (*sql.DB, error)

type UserRepository struct {
	open Opener
	log  *slog.Logger
}

// NewUserRepository returns a repository over the SQLite file at path.
func NewUserRepository(path string, logger *slog.Logger) *UserRepository {
	return NewUserRepositoryWithOpener(func() (*sql.DB, error) { return db.Open(path) }, logger)
}

// NewUserRepositoryWithOpener is like NewUserRepository with a caller-supplied opener.
func NewUserRepositoryWithOpener(open Opener, logger *slog.Logger) *UserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserRepository{open: open, log: logger}
}

// CredentialsQuery renders the lookup statement for a login attempt.
// Both values are pasted into the SQL text as-is.
func CredentialsQuery(username, password string) string {
	return fmt.Sprintf("SELECT * FROM users WHERE username='%s' AND password='%s'", username, password)
}

// FindByCredentials returns the first row matched by CredentialsQuery, or nil
// when nothing matches. NULL or mistyped columns come back as zero values.
// Query failures carry a stack trace.
func (r *UserRepository) FindByCredentials(ctx context.Context, username, password string) (*models.User, error) {
	d, err := r.open()
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	defer d.Close()

	query := CredentialsQuery(username, password)
	// written at info so it shows regardless of LOG_LEVEL=debug
	r.log.InfoContext(ctx, "[DEBUG] Executing query", "query", query)

	// any matched row counts, including injected rows of NULLs or mistyped values
	var id, name, pass any
	err = d.QueryRowContext(ctx, query).Scan(&id, &name, &pass)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "execute query %q", query)
	}
	return &models.User{ID: asInt64(id), Username: asString(name), Password: asString(pass)}, nil
}

func asInt64(v any) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case float64:
		return int64(x)
	case []byte:
		n, _ := strconv.ParseInt(string(x), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(x, 10, 64)
		return n
	default:
		return 0
	}
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// Create inserts a new user and returns it with its generated ID.
func (r *UserRepository) Create(ctx context.Context, username, password string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	d, err := r.open()
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	defer d.Close()

	res, err := d.ExecContext(ctx, `INSERT INTO users (username, password) VALUES (?, ?)`, username, password)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &models.User{ID: id, Username: username, Password: password}, nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	d, err := r.open()
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	defer d.Close()

	rows, err := d.QueryContext(ctx, `SELECT id, username, password FROM users ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()
	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Password); err != nil {
			return nil, errors.WithStack(err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}
