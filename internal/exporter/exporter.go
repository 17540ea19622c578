// Package exporter streams full-table exports as newline-delimited JSON.
package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/bulkport/bulkport/internal/core"
	"github.com/bulkport/bulkport/internal/domain/model"
	apperrors "github.com/bulkport/bulkport/internal/errors"
	"github.com/bulkport/bulkport/internal/observability/statsd"
)

// defaultPageSize is how many rows each fetch round pulls.
const defaultPageSize = 5000

// Repos groups the record repositories the exporter pages through.
type Repos struct {
	Users    core.UserRepository
	Articles core.ArticleRepository
	Comments core.CommentRepository
}

// ServiceOptions groups dependencies for the export Service.
type ServiceOptions struct {
	Repos    Repos
	PageSize int
	Logger   *slog.Logger
	Metrics  statsd.Sink
}

// Service streams ordered table scans page by page. Memory use is bounded by
// one page regardless of table size, and a slow consumer stalls the next
// fetch rather than growing a backlog.
//
// No snapshot isolation is taken: rows written concurrently with a long
// export can be skipped or duplicated across pages. Known caveat.
type Service struct {
	repos    Repos
	pageSize int
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewService constructs an export Service.
func NewService(opts ServiceOptions) *Service {
	if opts.Repos.Users == nil || opts.Repos.Articles == nil || opts.Repos.Comments == nil {
		panic("record repositories are required")
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = statsd.Noop{}
	}
	return &Service{
		repos:    opts.Repos,
		pageSize: opts.PageSize,
		logger:   opts.Logger.With("component", "exporter"),
		metrics:  opts.Metrics,
	}
}

// StreamRequest describes one export.
type StreamRequest struct {
	Resource model.Resource
	Format   model.Format
}

// Stream writes the requested table to w, one JSON object per line, fetching
// pages of rows ordered by id ascending until a fetch comes back empty.
// Writes block on the consumer; cancelling ctx stops further fetches.
// Returns the number of lines written.
//
// A format other than ndjson is a caller error, not a silent empty stream.
func (s *Service) Stream(ctx context.Context, req StreamRequest, w io.Writer) (int64, error) {
	if !req.Resource.Valid() {
		return 0, apperrors.Validationf("invalid resource: %q", req.Resource)
	}
	if !req.Format.Valid() {
		return 0, apperrors.Validationf("unsupported export format: %q", req.Format)
	}

	s.logger.InfoContext(ctx, "export started", "resource", req.Resource, "format", req.Format)

	var lines int64
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return lines, apperrors.MapDBError(err)
		}

		page, err := s.fetchPage(ctx, req.Resource, offset)
		if err != nil {
			return lines, err
		}
		if len(page) == 0 {
			break
		}
		offset += s.pageSize

		for _, rec := range page {
			if err := writeLine(w, rec); err != nil {
				// Consumer went away; stop fetching promptly.
				return lines, fmt.Errorf("write export line: %w", err)
			}
			lines++
		}
		s.metrics.Count("export.pages", 1, map[string]string{"resource": string(req.Resource)})
	}

	s.metrics.Count("export.lines", lines, map[string]string{"resource": string(req.Resource)})
	s.logger.InfoContext(ctx, "export finished", "resource", req.Resource, "lines", lines)
	return lines, nil
}

// fetchPage pulls one page of rows as marshal-ready records.
func (s *Service) fetchPage(ctx context.Context, resource model.Resource, offset int) ([]any, error) {
	switch resource {
	case model.ResourceUsers:
		rows, err := s.repos.Users.ListPage(ctx, s.pageSize, offset)
		return toAnySlice(rows), err
	case model.ResourceArticles:
		rows, err := s.repos.Articles.ListPage(ctx, s.pageSize, offset)
		return toAnySlice(rows), err
	case model.ResourceComments:
		rows, err := s.repos.Comments.ListPage(ctx, s.pageSize, offset)
		return toAnySlice(rows), err
	default:
		return nil, apperrors.Validationf("invalid resource: %q", resource)
	}
}

func writeLine(w io.Writer, rec any) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if _, err := w.Write(append(raw, '\n')); err != nil {
		return err
	}
	return nil
}

func toAnySlice[T any](rows []T) []any {
	out := make([]any, len(rows))
	for i := range rows {
		out[i] = rows[i]
	}
	return out
}
