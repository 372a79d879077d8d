package dto

import (
	"time"

	"quiz-tube/internal/domain"
)

// CreateQuizRequest represents the body of a quiz generation request
// @Description Request body for generating a quiz from a video URL
type CreateQuizRequest struct {
	URL string `json:"url"`
}

// UpdateQuizRequest represents a partial quiz update in the API request
// @Description Request body for updating a quiz's title or description
type UpdateQuizRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// QuestionResponse represents a question in the API response
type QuestionResponse struct {
	ID      string   `json:"id"`
	Title   string   `json:"question_title"`
	Options []string `json:"question_options"`
	Answer  string   `json:"answer"`
}

// QuizResponse represents a quiz in the API response
// @Description Quiz information including its questions
type QuizResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	VideoURL    string             `json:"video_url,omitempty"`
	Questions   []QuestionResponse `json:"questions"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// QuizListResponse represents a page of quizzes in the API response
type QuizListResponse struct {
	Quizzes []QuizResponse `json:"quizzes"`
	Count   int            `json:"count"`
}

// NewQuizResponse maps a domain quiz onto its API shape.
func NewQuizResponse(quiz *domain.Quiz) QuizResponse {
	questions := make([]QuestionResponse, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, QuestionResponse{
			ID:      q.ID,
			Title:   q.Title,
			Options: q.Options,
			Answer:  q.Answer,
		})
	}
	return QuizResponse{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		VideoURL:    quiz.VideoURL,
		Questions:   questions,
		CreatedAt:   quiz.CreatedAt,
		UpdatedAt:   quiz.UpdatedAt,
	}
}

// NewQuizListResponse maps a slice of domain quizzes onto the list shape.
func NewQuizListResponse(quizzes []*domain.Quiz) QuizListResponse {
	out := make([]QuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		out = append(out, NewQuizResponse(quiz))
	}
	return QuizListResponse{Quizzes: out, Count: len(out)}
}
