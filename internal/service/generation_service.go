package service

import (
	"context"
	"errors"

	"quiz-tube/internal/config"
	"quiz-tube/internal/domain"
	"quiz-tube/internal/dto"
	"quiz-tube/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// GenerationService runs the full video-to-quiz pipeline.
type GenerationService interface {
	GenerateQuiz(ctx context.Context, videoURL string, userID string) (*dto.QuizResponse, error)
}

// generationService implements GenerationService
type generationService struct {
	acquirer    domain.AudioAcquirer
	transcriber domain.Transcriber
	generator   domain.QuizGenerator
	repo        domain.QuizRepository
	txManager   domain.TransactionManager
	runs        *semaphore.Weighted
	cfg         *config.Config
}

// NewGenerationService creates a new instance of generationService. The
// semaphore bounds how many pipeline runs may hold audio work directories
// and subprocesses at once.
func NewGenerationService(
	acquirer domain.AudioAcquirer,
	transcriber domain.Transcriber,
	generator domain.QuizGenerator,
	repo domain.QuizRepository,
	txManager domain.TransactionManager,
	cfg *config.Config,
) GenerationService {
	return &generationService{
		acquirer:    acquirer,
		transcriber: transcriber,
		generator:   generator,
		repo:        repo,
		txManager:   txManager,
		runs:        semaphore.NewWeighted(int64(cfg.Pipeline.MaxConcurrentRuns)),
		cfg:         cfg,
	}
}

// GenerateQuiz implements GenerationService. Stages run strictly in order:
// parse, acquire, transcribe, generate, persist. Any stage error aborts the
// run with nothing written; the audio work directory is released on every
// exit path.
func (s *generationService) GenerateQuiz(ctx context.Context, videoURL string, userID string) (*dto.QuizResponse, error) {
	ref, err := domain.ParseMediaReference(videoURL)
	if err != nil {
		return nil, err
	}

	if !s.runs.TryAcquire(1) {
		return nil, domain.NewResourceLimitError("too many quiz generation runs in progress")
	}
	defer s.runs.Release(1)

	log := logger.Get().With(
		zap.String("videoID", ref.VideoID),
		zap.String("userID", userID),
	)
	log.Info("starting quiz generation run")

	asset, err := s.acquirer.Acquire(ctx, ref)
	if err != nil {
		return nil, stageError(err, "acquire")
	}
	defer func() {
		if releaseErr := asset.Release(); releaseErr != nil {
			log.Warn("failed to release audio work directory", zap.Error(releaseErr))
		}
	}()

	transcript, err := s.transcriber.Transcribe(ctx, asset)
	if err != nil {
		return nil, stageError(err, "transcribe")
	}
	log.Info("transcription complete", zap.Int("transcriptChars", len(transcript.Text)))

	draft, err := s.generator.Generate(ctx, transcript)
	if err != nil {
		return nil, stageError(err, "generate")
	}
	draft.VideoURL = ref.URL

	var quiz *domain.Quiz
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		saved, saveErr := s.repo.SaveQuiz(txCtx, draft, userID)
		if saveErr != nil {
			return domain.NewPersistenceError("failed to save generated quiz", saveErr)
		}
		quiz = saved
		return nil
	})
	if err != nil {
		return nil, stageError(err, "persist")
	}

	log.Info("quiz generation run complete", zap.String("quizID", quiz.ID))
	resp := dto.NewQuizResponse(quiz)
	return &resp, nil
}

// stageError tags a pipeline error with the stage it came from without
// changing its code or message.
func stageError(err error, stage string) error {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.WithDetail("stage", stage)
	}
	return domain.NewInternalError("quiz generation failed", err).WithDetail("stage", stage)
}
