package validation

import (
	"fmt"
	"regexp"
	"strings"

	"quiz-tube/internal/domain"
	"quiz-tube/internal/dto"
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateCreateQuizRequest checks the generation request before any network
// or subprocess work starts. URL shape beyond "non-empty, parseable" is left
// to domain.ParseMediaReference.
func (v *Validator) ValidateCreateQuizRequest(req *dto.CreateQuizRequest) error {
	if strings.TrimSpace(req.URL) == "" {
		return domain.NewValidationError("url is required")
	}
	if len(req.URL) > 2048 {
		return domain.NewValidationError("url exceeds 2048 characters")
	}
	return nil
}

// ValidateUpdateQuizRequest checks a partial update request.
func (v *Validator) ValidateUpdateQuizRequest(req *dto.UpdateQuizRequest) error {
	if req.Title == nil && req.Description == nil {
		return domain.NewInvalidInputError("at least one of title or description is required")
	}
	update := &domain.QuizUpdate{Title: req.Title, Description: req.Description}
	return update.Validate()
}

// ValidateQuizID checks a path parameter before it reaches the database.
func (v *Validator) ValidateQuizID(quizID string) error {
	if strings.TrimSpace(quizID) == "" {
		return domain.NewInvalidInputError("quiz id is required")
	}
	if !isValidULID(quizID) {
		return domain.NewInvalidInputError(fmt.Sprintf("invalid quiz id format: %s", quizID))
	}
	return nil
}

var validULID = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	// ULID is 26 characters long, Crockford's Base32
	return len(s) == 26 && validULID.MatchString(s)
}
