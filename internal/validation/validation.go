// Package validation checks user-supplied fields before they reach the store.
// Every failure is a field-level ValidationError.
package validation

import (
	"net/mail"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"snapshare/internal/models"
)

const (
	MinUsernameLen    = 2
	MaxUsernameLen    = 50
	MaxEmailLen       = 100
	MinPasswordLen    = 6
	MinSearchQueryLen = 2
)

var allowedImageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateUsername enforces the 2..50 character rule.
func ValidateUsername(username string) error {
	if blank(username) {
		return models.NewFieldValidationError("username", "Username is required")
	}
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLen || n > MaxUsernameLen {
		return models.NewFieldValidationError("username", "Username must be between 2 and 50 characters")
	}
	return nil
}

// ValidateEmail checks the address is a single bare addr-spec.
func ValidateEmail(email string) error {
	if blank(email) {
		return models.NewFieldValidationError("email", "Email is required")
	}
	if len(email) > MaxEmailLen {
		return models.NewFieldValidationError("email", "Email must be at most 100 characters")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return models.NewFieldValidationError("email", "Invalid email address")
	}
	return nil
}

func ValidatePassword(password string) error {
	if blank(password) {
		return models.NewFieldValidationError("password", "Password is required")
	}
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return models.NewFieldValidationError("password", "Password must be at least 6 characters")
	}
	return nil
}

func ValidatePasswordConfirmation(password, confirmation string) error {
	if confirmation != password {
		return models.NewFieldValidationError("password_confirmation", "Passwords do not match")
	}
	return nil
}

// ValidatePostFields requires a non-blank title of at most MaxTitleLen runes and
// a non-blank description.
func ValidatePostFields(title, description string) error {
	if blank(title) {
		return models.NewFieldValidationError("title", "Title is required")
	}
	if utf8.RuneCountInString(strings.TrimSpace(title)) > models.MaxTitleLen {
		return models.NewFieldValidationError("title", "Title must be at most 200 characters")
	}
	if blank(description) {
		return models.NewFieldValidationError("description", "Description is required")
	}
	return nil
}

func ValidateComment(text string) error {
	if blank(text) {
		return models.NewFieldValidationError("text", "Comment text is required")
	}
	return nil
}

// ValidateSearchQuery requires at least two characters. The query itself is
// matched verbatim, so it is not trimmed here.
func ValidateSearchQuery(query string) error {
	if blank(query) || utf8.RuneCountInString(query) < MinSearchQueryLen {
		return models.NewFieldValidationError("query", "Search query must be at least 2 characters")
	}
	return nil
}

// ImageExt returns the lowercased extension of filename when it names an
// allowed image type.
func ImageExt(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedImageExts[ext]; !ok {
		return "", models.NewFieldValidationError("photo", "Only images allowed (jpg, jpeg, png, gif, webp)")
	}
	return ext, nil
}
