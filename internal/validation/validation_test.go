package validation

import (
	"strings"
	"testing"

	"snapshare/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "alice", false},
		{"Exactly Min Length", "al", false},
		{"Exactly Max Length", strings.Repeat("a", 50), false},
		{"Too Short", "a", true},
		{"Too Long", strings.Repeat("a", 51), true},
		{"Blank", "   ", true},
		{"Unicode Counted By Rune", "éé", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.True(t, models.IsCode(err, models.CodeValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "test@example.com", false},
		{"Invalid Format", "not-an-email", true},
		{"Missing Domain", "user@", true},
		{"No TLD", "user@localhost", true},
		{"Display Name", "Alice <alice@example.com>", true},
		{"Too Long", strings.Repeat("a", 90) + "@example.com", true},
		{"Empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidatePassword("secret"))
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword("      "))

	assert.NoError(t, ValidatePasswordConfirmation("secret", "secret"))
	err := ValidatePasswordConfirmation("secret", "Secret")
	var appErr *models.AppError
	if assert.ErrorAs(t, err, &appErr) {
		assert.Equal(t, "password_confirmation", appErr.Field)
	}
}

func TestValidatePostFields(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		title, desc string
		field       string
	}{
		{"Valid", "Sunset", "over the bay", ""},
		{"Blank Title", "  ", "desc", "title"},
		{"Long Title", strings.Repeat("t", 201), "desc", "title"},
		{"Blank Description", "Sunset", "\t", "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePostFields(tt.title, tt.desc)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var appErr *models.AppError
			if assert.ErrorAs(t, err, &appErr) {
				assert.Equal(t, tt.field, appErr.Field)
			}
		})
	}
}

func TestValidateSearchQuery(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateSearchQuery("al"))
	assert.NoError(t, ValidateSearchQuery("alice "))
	assert.Error(t, ValidateSearchQuery("a"))
	assert.Error(t, ValidateSearchQuery("  "))
}

func TestImageExt(t *testing.T) {
	t.Parallel()
	tests := []struct {
		filename string
		want     string
		wantErr  bool
	}{
		{"photo.JPG", ".jpg", false},
		{"photo.jpeg", ".jpeg", false},
		{"a.b.png", ".png", false},
		{"anim.gif", ".gif", false},
		{"pic.webp", ".webp", false},
		{"doc.pdf", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := ImageExt(tt.filename)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateComment(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateComment("nice"))
	assert.Error(t, ValidateComment(" "))
}
