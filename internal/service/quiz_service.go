package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"quiz-tube/internal/cache"
	"quiz-tube/internal/domain"
	"quiz-tube/internal/dto"
	"quiz-tube/internal/logger"

	"go.uber.org/zap"
)

const quizDetailCacheTTL = 10 * time.Minute

// QuizService defines the interface for quiz read and management operations
type QuizService interface {
	GetQuiz(ctx context.Context, quizID string, userID string) (*dto.QuizResponse, error)
	ListQuizzes(ctx context.Context, userID string) (*dto.QuizListResponse, error)
	UpdateQuiz(ctx context.Context, quizID string, userID string, req *dto.UpdateQuizRequest) (*dto.QuizResponse, error)
	DeleteQuiz(ctx context.Context, quizID string, userID string) error
}

// quizService implements QuizService
type quizService struct {
	repo      domain.QuizRepository
	txManager domain.TransactionManager
	cache     domain.Cache
}

// NewQuizService creates a new instance of quizService
func NewQuizService(repo domain.QuizRepository, txManager domain.TransactionManager, cacheAdapter domain.Cache) QuizService {
	return &quizService{
		repo:      repo,
		txManager: txManager,
		cache:     cacheAdapter,
	}
}

// GetQuiz implements QuizService. Quiz details are served read-through from
// Redis; ownership is always checked against the database row, cached or not.
func (s *quizService) GetQuiz(ctx context.Context, quizID string, userID string) (*dto.QuizResponse, error) {
	cacheKey := cache.QuizDetailKey(quizID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey)
		if err == nil {
			var resp dto.QuizResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &resp); unmarshalErr == nil {
				if _, ownerErr := s.requireOwnedQuiz(ctx, quizID, userID); ownerErr != nil {
					return nil, ownerErr
				}
				return &resp, nil
			}
			logger.Get().Warn("discarding unreadable cached quiz", zap.String("key", cacheKey))
		} else if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Error("cache get failed", zap.Error(err), zap.String("key", cacheKey))
		}
	}

	quiz, err := s.requireOwnedQuiz(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}

	resp := dto.NewQuizResponse(quiz)
	if s.cache != nil {
		if payload, marshalErr := json.Marshal(resp); marshalErr == nil {
			if setErr := s.cache.Set(ctx, cacheKey, string(payload), quizDetailCacheTTL); setErr != nil {
				logger.Get().Error("cache set failed", zap.Error(setErr), zap.String("key", cacheKey))
			}
		}
	}
	return &resp, nil
}

// ListQuizzes implements QuizService
func (s *quizService) ListQuizzes(ctx context.Context, userID string) (*dto.QuizListResponse, error) {
	quizzes, err := s.repo.GetQuizzesByUserID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list quizzes", err)
	}
	resp := dto.NewQuizListResponse(quizzes)
	return &resp, nil
}

// UpdateQuiz implements QuizService. The owner check precedes the write, and
// the cached detail is invalidated after it succeeds.
func (s *quizService) UpdateQuiz(ctx context.Context, quizID string, userID string, req *dto.UpdateQuizRequest) (*dto.QuizResponse, error) {
	if _, err := s.requireOwnedQuiz(ctx, quizID, userID); err != nil {
		return nil, err
	}

	update := &domain.QuizUpdate{Title: req.Title, Description: req.Description}
	if err := update.Validate(); err != nil {
		return nil, err
	}

	quiz, err := s.repo.UpdateQuiz(ctx, quizID, update)
	if err != nil {
		return nil, domain.NewInternalError("failed to update quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	s.invalidateQuizCache(ctx, quizID)
	resp := dto.NewQuizResponse(quiz)
	return &resp, nil
}

// DeleteQuiz implements QuizService. The quiz and its questions soft-delete
// inside one transaction so no reader ever sees a live quiz with its
// questions already gone.
func (s *quizService) DeleteQuiz(ctx context.Context, quizID string, userID string) error {
	if _, err := s.requireOwnedQuiz(ctx, quizID, userID); err != nil {
		return err
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.repo.DeleteQuiz(txCtx, quizID)
	})
	if err != nil {
		return domain.NewInternalError("failed to delete quiz", err)
	}

	s.invalidateQuizCache(ctx, quizID)
	return nil
}

// requireOwnedQuiz loads the quiz and enforces ownership. Missing quizzes
// yield NotFound rather than Forbidden so callers cannot probe other users'
// quiz IDs.
func (s *quizService) requireOwnedQuiz(ctx context.Context, quizID string, userID string) (*domain.Quiz, error) {
	quiz, err := s.repo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	if quiz.UserID != userID {
		return nil, domain.NewForbiddenError("quiz belongs to another user")
	}
	return quiz, nil
}

func (s *quizService) invalidateQuizCache(ctx context.Context, quizID string) {
	if s.cache == nil {
		return
	}
	key := cache.QuizDetailKey(quizID)
	if err := s.cache.Delete(ctx, key); err != nil {
		logger.Get().Error("cache invalidation failed", zap.Error(err), zap.String("key", key))
	}
}
