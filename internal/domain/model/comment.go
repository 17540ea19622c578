package model

import (
	"encoding/json"
	"strings"
	"time"

	apperrors "github.com/bulkport/bulkport/internal/errors"
)

// maxCommentWords bounds the comment body to 500 whitespace-delimited words.
const maxCommentWords = 500

// Comment is a comment record as stored and exported.
type Comment struct {
	ID        string    `json:"id"         db:"id"`
	ArticleID string    `json:"article_id" db:"article_id"`
	UserID    string    `json:"user_id"    db:"user_id"`
	Body      string    `json:"body"       db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Validate applies the comment field constraints.
func (c *Comment) Validate() error {
	if c.ID == "" {
		return apperrors.ValidationField("id", "comment id cannot be empty")
	}
	if c.ArticleID == "" {
		return apperrors.ValidationField("article_id", "article id is required")
	}
	if c.UserID == "" {
		return apperrors.ValidationField("user_id", "user id is required")
	}
	if strings.TrimSpace(c.Body) == "" {
		return apperrors.ValidationField("body", "comment body cannot be blank")
	}
	if len(strings.Fields(c.Body)) > maxCommentWords {
		return apperrors.ValidationField("body", "comment body must be 500 words or less")
	}
	return nil
}

// commentLine is the wire shape of one comment import line.
type commentLine struct {
	ID        string  `json:"id"`
	ArticleID string  `json:"article_id"`
	UserID    string  `json:"user_id"`
	Body      string  `json:"body"`
	CreatedAt *string `json:"created_at"`
}

// ParseCommentLine parses one line of the comment import format: a JSON
// object per line. An absent or null created_at defaults to the current time.
func ParseCommentLine(line []byte, now func() time.Time) (Comment, error) {
	var raw commentLine
	if err := json.Unmarshal(line, &raw); err != nil {
		return Comment{}, apperrors.Wrap(err, apperrors.ErrCodeValidation, "comment line is not a JSON object")
	}

	c := Comment{
		ID:        raw.ID,
		ArticleID: raw.ArticleID,
		UserID:    raw.UserID,
		Body:      raw.Body,
		CreatedAt: now(),
	}
	if raw.CreatedAt != nil {
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(*raw.CreatedAt))
		if err != nil {
			return Comment{}, apperrors.ValidationField("created_at", "invalid created_at timestamp")
		}
		c.CreatedAt = t
	}

	if err := c.Validate(); err != nil {
		return Comment{}, err
	}
	return c, nil
}
