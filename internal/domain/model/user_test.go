package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bulkport/bulkport/internal/errors"
)

func TestParseUserLine(t *testing.T) {
	u, err := ParseUserLine("u1,alice@example.com,Alice,author,true,2024-01-02,2024-01-03T04:05:06Z")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, UserRoleAuthor, u.Role)
	assert.True(t, u.Active)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), u.CreatedAt)
	assert.Equal(t, time.Date(2024, 1, 3, 4, 5, 6, 0, time.UTC), u.UpdatedAt)
}

func TestParseUserLineFieldCount(t *testing.T) {
	_, err := ParseUserLine("u1,alice@example.com,Alice,author,true,2024-01-02")
	assert.True(t, apperrors.IsValidation(err), "six fields must fail")

	_, err = ParseUserLine("u1,alice@example.com,Alice,author,true,2024-01-02,2024-01-03,extra")
	assert.True(t, apperrors.IsValidation(err), "eight fields must fail")
}

func TestParseUserLineActiveTokens(t *testing.T) {
	cases := map[string]bool{
		"true":  true,
		"TRUE":  true,
		"Yes":   true,
		"1":     true,
		"y":     true,
		"Y":     true,
		"false": false,
		"no":    false,
		"0":     false,
		"":      false,
		"on":    false,
	}
	for token, want := range cases {
		u, err := ParseUserLine("u1,a@example.com,Alice,reader," + token + ",2024-01-02,2024-01-02")
		require.NoError(t, err, "token %q", token)
		assert.Equal(t, want, u.Active, "token %q", token)
	}
}

func TestParseUserLineInvalidFields(t *testing.T) {
	cases := map[string]struct {
		line  string
		field string
	}{
		"bad email": {
			line:  "u1,not-an-email,Alice,reader,true,2024-01-02,2024-01-02",
			field: "email",
		},
		"email with spaces": {
			line:  "u1,a b@example.com,Alice,reader,true,2024-01-02,2024-01-02",
			field: "email",
		},
		"blank name": {
			line:  "u1,a@example.com,   ,reader,true,2024-01-02,2024-01-02",
			field: "name",
		},
		"name too long": {
			line:  "u1,a@example.com," + strings.Repeat("n", 101) + ",reader,true,2024-01-02,2024-01-02",
			field: "name",
		},
		"unknown role": {
			line:  "u1,a@example.com,Alice,superuser,true,2024-01-02,2024-01-02",
			field: "role",
		},
		"empty role": {
			line:  "u1,a@example.com,Alice,,true,2024-01-02,2024-01-02",
			field: "role",
		},
		"empty id": {
			line:  ",a@example.com,Alice,reader,true,2024-01-02,2024-01-02",
			field: "id",
		},
		"bad created_at": {
			line:  "u1,a@example.com,Alice,reader,true,not-a-date,2024-01-02",
			field: "created_at",
		},
		"bad updated_at": {
			line:  "u1,a@example.com,Alice,reader,true,2024-01-02,02/01/2024",
			field: "updated_at",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseUserLine(tc.line)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tc.field, apperrors.GetField(err))
		})
	}
}

func TestParseUserLineUnicodeName(t *testing.T) {
	// 100 multibyte runes are within the limit even though the byte count is not.
	name := strings.Repeat("å", 100)
	u, err := ParseUserLine("u1,a@example.com," + name + ",reader,true,2024-01-02,2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, name, u.Name)
}

func TestUserNaturalKey(t *testing.T) {
	u := User{ID: "u1", Email: "a@example.com"}
	assert.Equal(t, "a@example.com", u.NaturalKey())
}
