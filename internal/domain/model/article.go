package model

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/bulkport/bulkport/internal/errors"
)

// ArticleStatus represents an article's publication status.
type ArticleStatus string

const (
	// ArticleStatusDraft marks an unpublished article. Drafts must not carry
	// a publication timestamp.
	ArticleStatusDraft ArticleStatus = "draft"
	// ArticleStatusPublished marks a published article. Published articles
	// must carry a publication timestamp.
	ArticleStatusPublished ArticleStatus = "published"
)

// Valid returns true if the ArticleStatus is known.
func (s ArticleStatus) Valid() bool {
	return s == ArticleStatusDraft || s == ArticleStatusPublished
}

const (
	maxArticleSlugLen  = 200
	maxArticleTitleLen = 200
	maxArticleTags     = 20
)

// kebabRegex matches kebab-case slugs: lowercase letters, digits, and single
// hyphens between parts. No leading/trailing or consecutive hyphens.
var kebabRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Article is an article record as stored and exported.
type Article struct {
	ID          string        `json:"id"           db:"id"`
	Slug        string        `json:"slug"         db:"slug"`
	Title       string        `json:"title"        db:"title"`
	Body        string        `json:"body"         db:"body"`
	AuthorID    string        `json:"author_id"    db:"author_id"`
	Tags        []string      `json:"tags"         db:"tags"`
	PublishedAt *time.Time    `json:"published_at" db:"published_at"`
	Status      ArticleStatus `json:"status"       db:"status"`
}

// NaturalKey returns the article's natural key used for upsert conflict
// detection: the slug.
func (a Article) NaturalKey() string {
	return a.Slug
}

// Validate applies the article field constraints, including the cross-field
// rule tying status to the publication timestamp.
func (a *Article) Validate() error {
	if a.ID == "" {
		return apperrors.ValidationField("id", "article id cannot be empty")
	}
	if a.Slug == "" || utf8.RuneCountInString(a.Slug) > maxArticleSlugLen || !kebabRegex.MatchString(a.Slug) {
		return apperrors.ValidationField("slug", "slug must be kebab-case, at most 200 characters")
	}
	if a.Title == "" || utf8.RuneCountInString(a.Title) > maxArticleTitleLen {
		return apperrors.ValidationField("title", "title is required, at most 200 characters")
	}
	if a.Body == "" {
		return apperrors.ValidationField("body", "body content cannot be empty")
	}
	if a.AuthorID == "" {
		return apperrors.ValidationField("author_id", "author id is required")
	}
	if len(a.Tags) > maxArticleTags {
		return apperrors.ValidationField("tags", "too many tags (max 20 allowed)")
	}
	for _, tag := range a.Tags {
		if tag == "" {
			return apperrors.ValidationField("tags", "tags cannot be empty")
		}
	}
	if !a.Status.Valid() {
		return apperrors.ValidationField("status", "invalid status")
	}
	if a.Status == ArticleStatusDraft && a.PublishedAt != nil {
		return apperrors.ValidationField("published_at", "draft articles cannot have a published_at date")
	}
	if a.Status == ArticleStatusPublished && a.PublishedAt == nil {
		return apperrors.ValidationField("published_at", "published articles must include a published_at date")
	}
	return nil
}

// articleLine is the wire shape of one article import line. Pointers
// distinguish absent fields, which take schema defaults, from invalid ones.
type articleLine struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	AuthorID    string   `json:"author_id"`
	Tags        []string `json:"tags"`
	PublishedAt *string  `json:"published_at"`
	Status      *string  `json:"status"`
}

// ParseArticleLine parses one line of the article import format: a JSON
// object per line. An absent status defaults to draft; an absent or null
// published_at means unpublished; absent tags default to none.
func ParseArticleLine(line []byte) (Article, error) {
	var raw articleLine
	if err := json.Unmarshal(line, &raw); err != nil {
		return Article{}, apperrors.Wrap(err, apperrors.ErrCodeValidation, "article line is not a JSON object")
	}

	a := Article{
		ID:       raw.ID,
		Slug:     raw.Slug,
		Title:    raw.Title,
		Body:     raw.Body,
		AuthorID: raw.AuthorID,
		Tags:     raw.Tags,
		Status:   ArticleStatusDraft,
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	if raw.Status != nil {
		a.Status = ArticleStatus(strings.TrimSpace(*raw.Status))
	}
	if raw.PublishedAt != nil {
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(*raw.PublishedAt))
		if err != nil {
			return Article{}, apperrors.ValidationField("published_at", "invalid published_at timestamp")
		}
		a.PublishedAt = &t
	}

	if err := a.Validate(); err != nil {
		return Article{}, err
	}
	return a, nil
}
