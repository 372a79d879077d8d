package transcription

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"quiz-tube/internal/adapter/runner"
	"quiz-tube/internal/config"
	"quiz-tube/internal/domain"
	"quiz-tube/internal/logger"

	"go.uber.org/zap"
)

// modelFiles maps each accuracy/speed tier to its whisper.cpp model file.
var modelFiles = map[string]string{
	"tiny":   "ggml-tiny.bin",
	"base":   "ggml-base.bin",
	"small":  "ggml-small.bin",
	"medium": "ggml-medium.bin",
	"large":  "ggml-large-v3.bin",
}

// Static assertion to ensure WhisperTranscriber implements Transcriber
var _ domain.Transcriber = (*WhisperTranscriber)(nil)

// WhisperTranscriber implements domain.Transcriber by shelling out to
// whisper.cpp. The model file for the configured tier is resolved lazily on
// first use, exactly once for the process lifetime; the tier is process-wide
// configuration, not per-request. Inference itself runs as an independent
// subprocess per call, so concurrent runs need no further synchronization.
type WhisperTranscriber struct {
	cfg    config.WhisperConfig
	runner runner.Runner

	loadOnce  sync.Once
	modelPath string
	loadErr   error

	stat     func(name string) (os.FileInfo, error)
	readFile func(name string) ([]byte, error)
	remove   func(name string) error
}

// NewWhisperTranscriber constructs the production transcriber. The model file
// is not touched until the first Transcribe call.
func NewWhisperTranscriber(cfg config.WhisperConfig, r runner.Runner) *WhisperTranscriber {
	return &WhisperTranscriber{
		cfg:      cfg,
		runner:   r,
		stat:     os.Stat,
		readFile: os.ReadFile,
		remove:   os.Remove,
	}
}

// Transcribe runs a single inference attempt over the asset. There is no
// internal retry: a quiz cannot be generated from silence, and a failed
// invocation is surfaced as-is for the orchestrator to abort on.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, asset *domain.AudioAsset) (*domain.Transcript, error) {
	modelPath, err := t.model()
	if err != nil {
		return nil, err
	}

	if t.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.Timeout)
		defer cancel()
	}

	// whisper.cpp appends .txt to the output base path.
	outBase := strings.TrimSuffix(asset.Path, filepath.Ext(asset.Path))
	args := []string{
		"-m", modelPath,
		"-f", asset.Path,
		"-otxt",
		"-of", outBase,
		"-np",
	}

	result, err := t.runner.Run(ctx, t.cfg.BinaryPath, args...)
	if err != nil {
		logger.Get().Error("whisper transcription failed",
			zap.Int("exit_code", result.ExitCode),
			zap.String("stderr", result.Stderr))
		return nil, domain.NewExternalServiceError("speech-to-text inference failed", err)
	}

	textPath := outBase + ".txt"
	content, err := t.readFile(textPath)
	if err != nil {
		return nil, domain.NewExternalServiceError("transcription completed but transcript file is missing", err)
	}
	_ = t.remove(textPath)

	text := strings.TrimSpace(string(content))
	if len(text) < t.cfg.MinTranscriptSize {
		return nil, domain.NewEmptyContentError(
			fmt.Sprintf("transcript too short to generate a quiz (%d chars, need %d)", len(text), t.cfg.MinTranscriptSize))
	}

	return &domain.Transcript{Text: text}, nil
}

// model resolves the configured tier's model file, at most once per process.
// Concurrent first callers block on the resolution; later callers reuse it.
func (t *WhisperTranscriber) model() (string, error) {
	t.loadOnce.Do(func() {
		fileName, ok := modelFiles[t.cfg.ModelTier]
		if !ok {
			t.loadErr = domain.NewInternalError(
				fmt.Sprintf("unknown whisper model tier: %s", t.cfg.ModelTier), nil)
			return
		}
		path := filepath.Join(t.cfg.ModelDir, fileName)
		if _, err := t.stat(path); err != nil {
			t.loadErr = domain.NewInternalError(
				fmt.Sprintf("whisper model file not found: %s", path), err)
			return
		}
		logger.Get().Info("whisper model resolved",
			zap.String("tier", t.cfg.ModelTier),
			zap.String("path", path))
		t.modelPath = path
	})
	return t.modelPath, t.loadErr
}
