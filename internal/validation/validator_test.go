package validation

import (
	"strings"
	"testing"

	"quiz-tube/internal/domain"
	"quiz-tube/internal/dto"

	"github.com/stretchr/testify/assert"
)

func TestValidateCreateQuizRequest(t *testing.T) {
	v := NewValidator()

	t.Run("valid request", func(t *testing.T) {
		err := v.ValidateCreateQuizRequest(&dto.CreateQuizRequest{URL: "https://youtu.be/dQw4w9WgXcQ"})
		assert.NoError(t, err)
	})

	t.Run("empty url", func(t *testing.T) {
		err := v.ValidateCreateQuizRequest(&dto.CreateQuizRequest{URL: "  "})
		assert.Equal(t, domain.ErrValidation, domain.CodeOf(err))
	})

	t.Run("url too long", func(t *testing.T) {
		err := v.ValidateCreateQuizRequest(&dto.CreateQuizRequest{
			URL: "https://youtu.be/" + strings.Repeat("x", 2048),
		})
		assert.Equal(t, domain.ErrValidation, domain.CodeOf(err))
	})
}

func TestValidateUpdateQuizRequest(t *testing.T) {
	v := NewValidator()
	str := func(s string) *string { return &s }

	t.Run("title only", func(t *testing.T) {
		assert.NoError(t, v.ValidateUpdateQuizRequest(&dto.UpdateQuizRequest{Title: str("New")}))
	})

	t.Run("no fields", func(t *testing.T) {
		err := v.ValidateUpdateQuizRequest(&dto.UpdateQuizRequest{})
		assert.Equal(t, domain.ErrInvalidInput, domain.CodeOf(err))
	})

	t.Run("blank title", func(t *testing.T) {
		err := v.ValidateUpdateQuizRequest(&dto.UpdateQuizRequest{Title: str(" ")})
		assert.Equal(t, domain.ErrInvalidInput, domain.CodeOf(err))
	})
}

func TestValidateQuizID(t *testing.T) {
	v := NewValidator()

	t.Run("valid ulid", func(t *testing.T) {
		assert.NoError(t, v.ValidateQuizID("01HYTESTQZ0000000000000000"))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, domain.ErrInvalidInput, domain.CodeOf(v.ValidateQuizID("")))
	})

	t.Run("wrong length", func(t *testing.T) {
		assert.Equal(t, domain.ErrInvalidInput, domain.CodeOf(v.ValidateQuizID("abc")))
	})

	t.Run("invalid characters", func(t *testing.T) {
		// I, L, O and U are excluded from Crockford's Base32.
		assert.Equal(t, domain.ErrInvalidInput, domain.CodeOf(v.ValidateQuizID("01HYTESTILOU00000000000000")))
	})
}
