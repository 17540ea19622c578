package model

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/bulkport/bulkport/internal/errors"
)

// UserRole represents a user's role within the system.
type UserRole string

const (
	// UserRoleAdmin grants full administrative access.
	UserRoleAdmin UserRole = "admin"
	// UserRoleAuthor can create and publish articles.
	UserRoleAuthor UserRole = "author"
	// UserRoleReader is the default role for new accounts.
	UserRoleReader UserRole = "reader"
	// UserRoleManager can manage authors and readers.
	UserRoleManager UserRole = "manager"
)

// Valid returns true if the UserRole is one of the known roles.
func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleAuthor || r == UserRoleReader || r == UserRoleManager
}

const (
	maxUserNameLen  = 100
	maxUserEmailLen = 255
	userLineFields  = 7
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// activeTokens are the case-insensitive values treated as "active" in user
// import lines. Any other token means inactive, not an error.
var activeTokens = map[string]bool{
	"true": true,
	"yes":  true,
	"1":    true,
	"y":    true,
}

// User is a user record as stored and exported.
type User struct {
	ID        string    `json:"id"         db:"id"`
	Email     string    `json:"email"      db:"email"`
	Name      string    `json:"name"       db:"name"`
	Role      UserRole  `json:"role"       db:"role"`
	Active    bool      `json:"active"     db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NaturalKey returns the user's natural key used for upsert conflict
// detection: the email address.
func (u User) NaturalKey() string {
	return u.Email
}

// Validate applies the user field constraints.
func (u *User) Validate() error {
	if u.ID == "" {
		return apperrors.ValidationField("id", "user id cannot be empty")
	}
	if u.Email == "" || len(u.Email) > maxUserEmailLen || !emailRegex.MatchString(u.Email) {
		return apperrors.ValidationField("email", "invalid email address")
	}
	if strings.TrimSpace(u.Name) == "" {
		return apperrors.ValidationField("name", "name cannot be blank")
	}
	if utf8.RuneCountInString(u.Name) > maxUserNameLen {
		return apperrors.ValidationField("name", "name must be at most 100 characters")
	}
	if !u.Role.Valid() {
		return apperrors.ValidationField("role", "invalid role")
	}
	return nil
}

// ParseUserLine parses one line of the user import format: a comma-separated
// line of exactly seven positional fields
// (id, email, name, role, active, created_at, updated_at).
//
// The split is a plain comma split, not RFC 4180 CSV; fields cannot contain
// commas. The active token is true only when it case-insensitively matches
// one of "true", "yes", "1", "y".
func ParseUserLine(line string) (User, error) {
	tokens := strings.Split(line, ",")
	if len(tokens) != userLineFields {
		return User{}, apperrors.Validationf("user line must have exactly %d fields, got %d",
			userLineFields, len(tokens))
	}

	createdAt, err := parseLineTime(tokens[5])
	if err != nil {
		return User{}, apperrors.ValidationField("created_at", "invalid created_at timestamp")
	}
	updatedAt, err := parseLineTime(tokens[6])
	if err != nil {
		return User{}, apperrors.ValidationField("updated_at", "invalid updated_at timestamp")
	}

	u := User{
		ID:        strings.TrimSpace(tokens[0]),
		Email:     strings.TrimSpace(tokens[1]),
		Name:      tokens[2],
		Role:      UserRole(strings.TrimSpace(tokens[3])),
		Active:    activeTokens[strings.ToLower(strings.TrimSpace(tokens[4]))],
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if err := u.Validate(); err != nil {
		return User{}, err
	}
	return u, nil
}

// parseLineTime accepts RFC 3339 timestamps or bare dates.
func parseLineTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
