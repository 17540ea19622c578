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

const commentColumns = `id, article_id, user_id, body, created_at`

// CommentRepo provides database operations for comment records.
type CommentRepo struct {
	DB     *sql.DB
	logger *slog.Logger
}

// NewCommentRepo creates a new CommentRepo. A nil logger falls back to slog.Default.
func NewCommentRepo(db *sql.DB, logger *slog.Logger) *CommentRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentRepo{DB: db, logger: logger}
}

// BulkUpsert inserts the batch in one statement, leaving existing rows
// untouched on id conflicts, and returns the number of rows written.
// Comments have no batch-level dedup; conflicting rows simply do not count
// as written. A missing article or user fails the whole statement.
func (r *CommentRepo) BulkUpsert(ctx context.Context, comments []model.Comment) (int, error) {
	if len(comments) == 0 {
		return 0, nil
	}

	const cols = 5
	args := make([]any, 0, len(comments)*cols)
	for _, c := range comments {
		args = append(args, c.ID, c.ArticleID, c.UserID, c.Body, c.CreatedAt)
	}

	query := `
		INSERT INTO comments (` + commentColumns + `)
		VALUES ` + valuesClause(len(comments), cols) + `
		ON CONFLICT (id) DO NOTHING
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
		return 0, apperrors.MapDBError(fmt.Errorf("bulk insert comments: %w", err))
	}

	r.logger.InfoContext(ctx, "comments written", "count", written)
	return written, nil
}

// ListPage returns one page of comments ordered by id ascending.
func (r *CommentRepo) ListPage(ctx context.Context, limit, offset int) ([]model.Comment, error) {
	var out []model.Comment
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+commentColumns+` FROM comments ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Comment])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list comments page: %w", err))
	}
	return out, nil
}
