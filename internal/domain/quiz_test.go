package domain

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidDraft() *QuizDraft {
	draft := &QuizDraft{
		Title:       "History of the Internet",
		Description: "From ARPANET to the modern web.",
	}
	for i := 0; i < QuizQuestionCount; i++ {
		draft.Questions = append(draft.Questions, QuestionDraft{
			Title:   fmt.Sprintf("Question %d", i+1),
			Options: []string{"1969", "1983", "1991", "2004"},
			Answer:  "1983",
		})
	}
	return draft
}

func TestQuizDraftValidate(t *testing.T) {
	t.Run("valid draft passes", func(t *testing.T) {
		assert.NoError(t, newValidDraft().Validate())
	})

	t.Run("missing title", func(t *testing.T) {
		draft := newValidDraft()
		draft.Title = "  "
		err := draft.Validate()
		require.Error(t, err)
		assert.Equal(t, ErrSchemaValidation, CodeOf(err))
	})

	t.Run("title too long", func(t *testing.T) {
		draft := newValidDraft()
		draft.Title = strings.Repeat("x", MaxTitleLength+1)
		assert.Equal(t, ErrSchemaValidation, CodeOf(draft.Validate()))
	})

	t.Run("description too long", func(t *testing.T) {
		draft := newValidDraft()
		draft.Description = strings.Repeat("x", MaxDescriptionLength+1)
		assert.Equal(t, ErrSchemaValidation, CodeOf(draft.Validate()))
	})

	t.Run("too few questions", func(t *testing.T) {
		draft := newValidDraft()
		draft.Questions = draft.Questions[:QuizQuestionCount-1]
		assert.Equal(t, ErrSchemaValidation, CodeOf(draft.Validate()))
	})

	t.Run("too many questions", func(t *testing.T) {
		draft := newValidDraft()
		draft.Questions = append(draft.Questions, draft.Questions[0])
		assert.Equal(t, ErrSchemaValidation, CodeOf(draft.Validate()))
	})
}

func TestQuestionDraftValidate(t *testing.T) {
	valid := func() QuestionDraft {
		return QuestionDraft{
			Title:   "When was TCP/IP adopted?",
			Options: []string{"1969", "1983", "1991", "2004"},
			Answer:  "1983",
		}
	}

	t.Run("valid question passes", func(t *testing.T) {
		q := valid()
		assert.NoError(t, q.Validate())
	})

	t.Run("missing title", func(t *testing.T) {
		q := valid()
		q.Title = ""
		assert.Equal(t, ErrSchemaValidation, CodeOf(q.Validate()))
	})

	t.Run("wrong option count", func(t *testing.T) {
		q := valid()
		q.Options = q.Options[:3]
		assert.Equal(t, ErrSchemaValidation, CodeOf(q.Validate()))
	})

	t.Run("duplicate options", func(t *testing.T) {
		q := valid()
		q.Options = []string{"1983", "1983", "1991", "2004"}
		assert.Equal(t, ErrSchemaValidation, CodeOf(q.Validate()))
	})

	t.Run("answer not among options", func(t *testing.T) {
		q := valid()
		q.Answer = "1995"
		assert.Equal(t, ErrSchemaValidation, CodeOf(q.Validate()))
	})
}

func TestQuizUpdateValidate(t *testing.T) {
	str := func(s string) *string { return &s }

	t.Run("title update passes", func(t *testing.T) {
		u := &QuizUpdate{Title: str("New Title")}
		assert.NoError(t, u.Validate())
	})

	t.Run("blank title rejected", func(t *testing.T) {
		u := &QuizUpdate{Title: str("   ")}
		assert.Equal(t, ErrInvalidInput, CodeOf(u.Validate()))
	})

	t.Run("description may be cleared", func(t *testing.T) {
		u := &QuizUpdate{Description: str("")}
		assert.NoError(t, u.Validate())
	})
}
