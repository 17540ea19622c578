package data

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/bulkport/bulkport/internal/data/pgxutil"
	"github.com/bulkport/bulkport/internal/domain/model"
	apperrors "github.com/bulkport/bulkport/internal/errors"
)

const userColumns = `id, email, name, role, active, created_at, updated_at`

// UserRepo provides database operations for user records.
type UserRepo struct {
	DB     *sql.DB
	logger *slog.Logger
}

// NewUserRepo creates a new UserRepo. A nil logger falls back to slog.Default.
func NewUserRepo(db *sql.DB, logger *slog.Logger) *UserRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserRepo{DB: db, logger: logger}
}

// BulkUpsert inserts the batch in one statement, updating rows in place on
// email conflicts, and returns the number of rows written.
//
// The batch must already be deduplicated by email: Postgres rejects a single
// INSERT whose ON CONFLICT update would touch the same row twice.
func (r *UserRepo) BulkUpsert(ctx context.Context, users []model.User) (int, error) {
	if len(users) == 0 {
		return 0, nil
	}

	const cols = 7
	args := make([]any, 0, len(users)*cols)
	for _, u := range users {
		args = append(args, u.ID, u.Email, u.Name, u.Role, u.Active, u.CreatedAt, u.UpdatedAt)
	}

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ` + valuesClause(len(users), cols) + `
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			active = EXCLUDED.active,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id`

	var written int
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}
		written = len(ids)
		return nil
	})
	if err != nil {
		return 0, apperrors.MapDBError(fmt.Errorf("bulk upsert users: %w", err))
	}

	r.logger.InfoContext(ctx, "users written", "count", written)
	return written, nil
}

// ListPage returns one page of users ordered by id ascending.
func (r *UserRepo) ListPage(ctx context.Context, limit, offset int) ([]model.User, error) {
	var out []model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.User])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list users page: %w", err))
	}
	return out, nil
}
