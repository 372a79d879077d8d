package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"quiz-tube/internal/domain"
	"quiz-tube/internal/repository/models"
	"quiz-tube/internal/util"

	"github.com/jmoiron/sqlx"
)

// QuizDatabaseAdapter implements domain.QuizRepository using sqlx.DB
type QuizDatabaseAdapter struct {
	db *sqlx.DB
}

// NewQuizDatabaseAdapter creates a new instance of QuizDatabaseAdapter
func NewQuizDatabaseAdapter(db *sqlx.DB) domain.QuizRepository {
	return &QuizDatabaseAdapter{db: db}
}

// SaveQuiz inserts the quiz and all of its questions. It joins the ambient
// transaction from the context, so a caller running it under
// TransactionManager.WithTransaction gets the all-or-nothing write the quiz
// schema requires.
func (a *QuizDatabaseAdapter) SaveQuiz(ctx context.Context, draft *domain.QuizDraft, userID string) (*domain.Quiz, error) {
	exec := GetExecutor(ctx, a.db)
	now := time.Now()

	modelQuiz := &models.Quiz{
		ID:          util.NewULID(),
		UserID:      userID,
		Title:       draft.Title,
		Description: draft.Description,
		VideoURL:    sql.NullString{String: draft.VideoURL, Valid: draft.VideoURL != ""},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	quizQuery := `INSERT INTO quizzes (id, user_id, title, description, video_url, created_at, updated_at)
	              VALUES (:id, :user_id, :title, :description, :video_url, :created_at, :updated_at)`
	if _, err := exec.NamedExecContext(ctx, quizQuery, modelQuiz); err != nil {
		return nil, fmt.Errorf("failed to insert quiz: %w", err)
	}

	questionQuery := `INSERT INTO questions (id, quiz_id, question_title, question_options, answer, created_at, updated_at)
	                  VALUES (:id, :quiz_id, :question_title, :question_options, :answer, :created_at, :updated_at)`

	questions := make([]domain.Question, 0, len(draft.Questions))
	for _, q := range draft.Questions {
		modelQuestion := &models.Question{
			ID:        util.NewULID(),
			QuizID:    modelQuiz.ID,
			Title:     q.Title,
			Options:   models.StringSlice(q.Options),
			Answer:    q.Answer,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := exec.NamedExecContext(ctx, questionQuery, modelQuestion); err != nil {
			return nil, fmt.Errorf("failed to insert question: %w", err)
		}
		questions = append(questions, *toDomainQuestion(modelQuestion))
	}

	quiz := toDomainQuiz(modelQuiz)
	quiz.Questions = questions
	return quiz, nil
}

// GetQuizByID returns the quiz with its questions, or nil when no live row
// matches.
func (a *QuizDatabaseAdapter) GetQuizByID(ctx context.Context, quizID string) (*domain.Quiz, error) {
	exec := GetExecutor(ctx, a.db)

	var modelQuiz models.Quiz
	quizQuery := `SELECT
		id "id",
		user_id "user_id",
		title "title",
		description "description",
		video_url "video_url",
		created_at "created_at",
		updated_at "updated_at",
		deleted_at "deleted_at"
	FROM quizzes
	WHERE id = :1
	AND deleted_at IS NULL`

	if err := exec.GetContext(ctx, &modelQuiz, quizQuery, quizID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by ID %s: %w", quizID, err)
	}

	questions, err := a.getQuestions(ctx, exec, quizID)
	if err != nil {
		return nil, err
	}

	quiz := toDomainQuiz(&modelQuiz)
	quiz.Questions = questions
	return quiz, nil
}

// GetQuizzesByUserID returns all live quizzes owned by the user, newest
// first, with their questions attached.
func (a *QuizDatabaseAdapter) GetQuizzesByUserID(ctx context.Context, userID string) ([]*domain.Quiz, error) {
	exec := GetExecutor(ctx, a.db)

	var modelQuizzes []models.Quiz
	query := `SELECT
		id "id",
		user_id "user_id",
		title "title",
		description "description",
		video_url "video_url",
		created_at "created_at",
		updated_at "updated_at",
		deleted_at "deleted_at"
	FROM quizzes
	WHERE user_id = :1
	AND deleted_at IS NULL
	ORDER BY created_at DESC`

	if err := exec.SelectContext(ctx, &modelQuizzes, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get quizzes for user %s: %w", userID, err)
	}

	quizzes := make([]*domain.Quiz, 0, len(modelQuizzes))
	for i := range modelQuizzes {
		questions, err := a.getQuestions(ctx, exec, modelQuizzes[i].ID)
		if err != nil {
			return nil, err
		}
		quiz := toDomainQuiz(&modelQuizzes[i])
		quiz.Questions = questions
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}

// UpdateQuiz applies a partial title/description update and returns the
// refreshed quiz. Returns nil when the quiz does not exist.
func (a *QuizDatabaseAdapter) UpdateQuiz(ctx context.Context, quizID string, update *domain.QuizUpdate) (*domain.Quiz, error) {
	exec := GetExecutor(ctx, a.db)

	setClauses := []string{"updated_at = :updated_at"}
	args := map[string]interface{}{
		"id":         quizID,
		"updated_at": time.Now(),
	}
	if update.Title != nil {
		setClauses = append(setClauses, "title = :title")
		args["title"] = *update.Title
	}
	if update.Description != nil {
		setClauses = append(setClauses, "description = :description")
		args["description"] = *update.Description
	}

	query := fmt.Sprintf(`UPDATE quizzes SET %s WHERE id = :id AND deleted_at IS NULL`,
		strings.Join(setClauses, ", "))

	if _, err := exec.NamedExecContext(ctx, query, args); err != nil {
		return nil, fmt.Errorf("failed to update quiz %s: %w", quizID, err)
	}

	return a.GetQuizByID(ctx, quizID)
}

// DeleteQuiz soft-deletes the quiz and its questions together.
func (a *QuizDatabaseAdapter) DeleteQuiz(ctx context.Context, quizID string) error {
	exec := GetExecutor(ctx, a.db)
	now := time.Now()

	args := map[string]interface{}{"id": quizID, "deleted_at": now}

	if _, err := exec.NamedExecContext(ctx,
		`UPDATE questions SET deleted_at = :deleted_at WHERE quiz_id = :id AND deleted_at IS NULL`, args); err != nil {
		return fmt.Errorf("failed to delete questions for quiz %s: %w", quizID, err)
	}
	if _, err := exec.NamedExecContext(ctx,
		`UPDATE quizzes SET deleted_at = :deleted_at WHERE id = :id AND deleted_at IS NULL`, args); err != nil {
		return fmt.Errorf("failed to delete quiz %s: %w", quizID, err)
	}
	return nil
}

func (a *QuizDatabaseAdapter) getQuestions(ctx context.Context, exec DBTX, quizID string) ([]domain.Question, error) {
	var modelQuestions []models.Question
	query := `SELECT
		id "id",
		quiz_id "quiz_id",
		question_title "question_title",
		question_options "question_options",
		answer "answer",
		created_at "created_at",
		updated_at "updated_at",
		deleted_at "deleted_at"
	FROM questions
	WHERE quiz_id = :1
	AND deleted_at IS NULL
	ORDER BY created_at ASC, id ASC`

	if err := exec.SelectContext(ctx, &modelQuestions, query, quizID); err != nil {
		return nil, fmt.Errorf("failed to get questions for quiz %s: %w", quizID, err)
	}

	questions := make([]domain.Question, 0, len(modelQuestions))
	for i := range modelQuestions {
		questions = append(questions, *toDomainQuestion(&modelQuestions[i]))
	}
	return questions, nil
}

func toDomainQuiz(m *models.Quiz) *domain.Quiz {
	if m == nil {
		return nil
	}
	return &domain.Quiz{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Description: m.Description,
		VideoURL:    m.VideoURL.String,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toDomainQuestion(m *models.Question) *domain.Question {
	if m == nil {
		return nil
	}
	return &domain.Question{
		ID:        m.ID,
		QuizID:    m.QuizID,
		Title:     m.Title,
		Options:   []string(m.Options),
		Answer:    m.Answer,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
