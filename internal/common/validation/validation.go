package validation

import (
	"strings"
	"unicode/utf8"

	apperrors "geev-escrow/internal/common/errors"
)

const (
	// Максимальные длины текстовых полей кампаний
	MaxTitleLength       = 128
	MaxDescriptionLength = 4096
	MaxCategoryLength    = 64
)

// ValidateTitle проверяет заголовок
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return apperrors.NewValidationError("title", "is required")
	}
	return ValidateMaxLength("title", title, MaxTitleLength)
}

// ValidateDescription проверяет описание; пустое допустимо
func ValidateDescription(description string) error {
	return ValidateMaxLength("description", description, MaxDescriptionLength)
}

// ValidateCategory проверяет категорию; пустая допустима
func ValidateCategory(category string) error {
	return ValidateMaxLength("category", category, MaxCategoryLength)
}

// ValidateMaxLength считает длину в байтах и отклоняет невалидный UTF-8
func ValidateMaxLength(field, value string, max int) error {
	if !utf8.ValidString(value) {
		return apperrors.NewValidationError(field, "must be valid UTF-8")
	}
	if len(value) > max {
		return apperrors.NewValidationError(field, "is too long")
	}
	return nil
}
