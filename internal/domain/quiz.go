package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	// QuizQuestionCount is the exact number of questions a generated quiz holds.
	QuizQuestionCount = 10
	// QuestionOptionCount is the exact number of answer options per question.
	QuestionOptionCount = 4
	// MaxTitleLength bounds quiz and question titles.
	MaxTitleLength = 255
	// MaxDescriptionLength bounds the quiz description.
	MaxDescriptionLength = 500
)

// QuestionDraft is a not-yet-persisted candidate question.
type QuestionDraft struct {
	Title   string
	Options []string
	Answer  string
}

// Validate checks the question's structural invariants: a non-empty title,
// exactly four distinct options, and an answer that is one of the options.
func (q *QuestionDraft) Validate() error {
	if strings.TrimSpace(q.Title) == "" {
		return NewSchemaValidationError("question title is missing", nil)
	}
	if len(q.Options) != QuestionOptionCount {
		return NewSchemaValidationError(
			fmt.Sprintf("question must have exactly %d options, got %d", QuestionOptionCount, len(q.Options)), nil)
	}
	seen := make(map[string]bool, QuestionOptionCount)
	for _, opt := range q.Options {
		if seen[opt] {
			return NewSchemaValidationError("question options must be distinct", nil)
		}
		seen[opt] = true
	}
	if !seen[q.Answer] {
		return NewSchemaValidationError("answer must be one of the question options", nil)
	}
	return nil
}

// QuizDraft is a fully generated, not-yet-persisted quiz. It is never handed
// to the repository unless Validate passes.
type QuizDraft struct {
	Title       string
	Description string
	VideoURL    string
	Questions   []QuestionDraft
}

// Validate checks the draft against the generation schema: non-empty title,
// bounded description, and exactly ten independently valid questions.
func (d *QuizDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return NewSchemaValidationError("quiz title is missing", nil)
	}
	if len(d.Title) > MaxTitleLength {
		return NewSchemaValidationError(fmt.Sprintf("quiz title exceeds %d characters", MaxTitleLength), nil)
	}
	if len(d.Description) > MaxDescriptionLength {
		return NewSchemaValidationError(fmt.Sprintf("description exceeds %d characters", MaxDescriptionLength), nil)
	}
	if len(d.Questions) != QuizQuestionCount {
		return NewSchemaValidationError(
			fmt.Sprintf("quiz must contain exactly %d questions, got %d", QuizQuestionCount, len(d.Questions)), nil)
	}
	for i := range d.Questions {
		if err := d.Questions[i].Validate(); err != nil {
			return NewSchemaValidationError(fmt.Sprintf("question %d invalid", i+1), err)
		}
	}
	return nil
}

// Question is a persisted quiz question.
type Question struct {
	ID        string
	QuizID    string
	Title     string
	Options   []string
	Answer    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Quiz is a persisted quiz owned by a single user.
type Quiz struct {
	ID          string
	UserID      string
	Title       string
	Description string
	VideoURL    string
	Questions   []Question
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// QuizUpdate carries the optional fields of a partial quiz update.
type QuizUpdate struct {
	Title       *string
	Description *string
}

// Validate rejects a blank title; the description may be cleared.
func (u *QuizUpdate) Validate() error {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return NewInvalidInputError("title cannot be blank")
	}
	if u.Title != nil && len(*u.Title) > MaxTitleLength {
		return NewInvalidInputError(fmt.Sprintf("title exceeds %d characters", MaxTitleLength))
	}
	if u.Description != nil && len(*u.Description) > MaxDescriptionLength {
		return NewInvalidInputError(fmt.Sprintf("description exceeds %d characters", MaxDescriptionLength))
	}
	if u.Title == nil && u.Description == nil {
		return NewInvalidInputError("no fields to update")
	}
	return nil
}

// QuizRepository defines the persistence contract for quizzes. SaveQuiz writes
// the quiz and all of its questions atomically: they become visible together
// or not at all.
type QuizRepository interface {
	SaveQuiz(ctx context.Context, draft *QuizDraft, userID string) (*Quiz, error)
	GetQuizByID(ctx context.Context, quizID string) (*Quiz, error)
	GetQuizzesByUserID(ctx context.Context, userID string) ([]*Quiz, error)
	UpdateQuiz(ctx context.Context, quizID string, update *QuizUpdate) (*Quiz, error)
	DeleteQuiz(ctx context.Context, quizID string) error
}

// TransactionManager runs a function within a database transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
