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

const articleColumns = `id, slug, title, body, author_id, tags, published_at, status`

// ArticleRepo provides database operations for article records.
type ArticleRepo struct {
	DB     *sql.DB
	logger *slog.Logger
}

// NewArticleRepo creates a new ArticleRepo. A nil logger falls back to slog.Default.
func NewArticleRepo(db *sql.DB, logger *slog.Logger) *ArticleRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArticleRepo{DB: db, logger: logger}
}

// BulkUpsert inserts the batch in one statement, updating rows in place on
// slug conflicts, and returns the number of rows written.
//
// The batch must already be deduplicated by slug: Postgres rejects a single
// INSERT whose ON CONFLICT update would touch the same row twice. A missing
// author fails the whole statement; the caller accounts the batch as failed.
func (r *ArticleRepo) BulkUpsert(ctx context.Context, articles []model.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	const cols = 8
	args := make([]any, 0, len(articles)*cols)
	for _, a := range articles {
		args = append(args, a.ID, a.Slug, a.Title, a.Body, a.AuthorID, a.Tags, a.PublishedAt, a.Status)
	}

	query := `
		INSERT INTO articles (` + articleColumns + `)
		VALUES ` + valuesClause(len(articles), cols) + `
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			author_id = EXCLUDED.author_id,
			tags = EXCLUDED.tags,
			published_at = EXCLUDED.published_at,
			status = EXCLUDED.status
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
		return 0, apperrors.MapDBError(fmt.Errorf("bulk upsert articles: %w", err))
	}

	r.logger.InfoContext(ctx, "articles written", "count", written)
	return written, nil
}

// ListPage returns one page of articles ordered by id ascending.
func (r *ArticleRepo) ListPage(ctx context.Context, limit, offset int) ([]model.Article, error) {
	var out []model.Article
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+articleColumns+` FROM articles ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Article])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list articles page: %w", err))
	}
	return out, nil
}
