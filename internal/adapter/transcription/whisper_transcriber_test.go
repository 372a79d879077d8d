package transcription

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"quiz-tube/internal/adapter/runner"
	"quiz-tube/internal/config"
	"quiz-tube/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	mu    sync.Mutex
	calls [][]string
	onRun func(name string, args []string) (runner.Result, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (runner.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()
	return f.onRun(name, args)
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// testEnv lays out a model directory and an audio asset on disk.
func testEnv(t *testing.T) (config.WhisperConfig, *domain.AudioAsset) {
	t.Helper()

	modelDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(modelDir, "ggml-base.bin"), []byte("model"), 0o644))

	workDir := t.TempDir()
	audioPath := filepath.Join(workDir, "audio-16k-mono.wav")
	require.NoError(t, os.WriteFile(audioPath, []byte("RIFF"), 0o644))

	cfg := config.WhisperConfig{
		BinaryPath:        "whisper-cli",
		ModelDir:          modelDir,
		ModelTier:         "base",
		Timeout:           time.Minute,
		MinTranscriptSize: 40,
	}
	return cfg, domain.NewAudioAsset(audioPath, workDir, "wav", 16000, 1, time.Minute)
}

const longTranscript = "This transcript is comfortably longer than the configured minimum size for quiz generation."

// transcribingRunner writes a transcript next to the audio file, the way
// whisper.cpp's -otxt mode does.
func transcribingRunner(t *testing.T, transcript string) *fakeRunner {
	t.Helper()
	return &fakeRunner{onRun: func(name string, args []string) (runner.Result, error) {
		outBase := argAfter(args, "-of")
		require.NotEmpty(t, outBase)
		if err := os.WriteFile(outBase+".txt", []byte(transcript), 0o644); err != nil {
			return runner.Result{}, err
		}
		return runner.Result{}, nil
	}}
}

func TestTranscribe_Success(t *testing.T) {
	cfg, asset := testEnv(t)
	fake := transcribingRunner(t, longTranscript+"\n")

	transcriber := NewWhisperTranscriber(cfg, fake)
	transcript, err := transcriber.Transcribe(context.Background(), asset)

	require.NoError(t, err)
	assert.Equal(t, longTranscript, transcript.Text)

	require.Len(t, fake.calls, 1)
	args := fake.calls[0]
	assert.Equal(t, "whisper-cli", args[0])
	assert.Equal(t, filepath.Join(cfg.ModelDir, "ggml-base.bin"), argAfter(args, "-m"))
	assert.Equal(t, asset.Path, argAfter(args, "-f"))

	// Intermediate transcript file is cleaned up.
	outBase := strings.TrimSuffix(asset.Path, ".wav")
	_, statErr := os.Stat(outBase + ".txt")
	assert.True(t, os.IsNotExist(statErr))
}

func TestTranscribe_ModelResolvedOnce(t *testing.T) {
	cfg, asset := testEnv(t)
	fake := transcribingRunner(t, longTranscript)

	statCalls := 0
	transcriber := NewWhisperTranscriber(cfg, fake)
	transcriber.stat = func(name string) (os.FileInfo, error) {
		statCalls++
		return os.Stat(name)
	}

	for i := 0; i < 3; i++ {
		_, err := transcriber.Transcribe(context.Background(), asset)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, statCalls, "model file must be resolved exactly once")
}

func TestTranscribe_ModelMissing(t *testing.T) {
	cfg, asset := testEnv(t)
	cfg.ModelDir = t.TempDir() // no model file here
	fake := transcribingRunner(t, longTranscript)

	transcriber := NewWhisperTranscriber(cfg, fake)
	_, err := transcriber.Transcribe(context.Background(), asset)

	require.Error(t, err)
	assert.Equal(t, domain.ErrInternal, domain.CodeOf(err))
	assert.Empty(t, fake.calls, "inference must not run without a model")

	// The failure is sticky for the process lifetime.
	_, err = transcriber.Transcribe(context.Background(), asset)
	require.Error(t, err)
}

func TestTranscribe_UnknownTier(t *testing.T) {
	cfg, asset := testEnv(t)
	cfg.ModelTier = "enormous"

	transcriber := NewWhisperTranscriber(cfg, &fakeRunner{onRun: func(string, []string) (runner.Result, error) {
		return runner.Result{}, nil
	}})
	_, err := transcriber.Transcribe(context.Background(), asset)

	require.Error(t, err)
	assert.Equal(t, domain.ErrInternal, domain.CodeOf(err))
}

func TestTranscribe_InvocationFailure(t *testing.T) {
	cfg, asset := testEnv(t)
	fake := &fakeRunner{onRun: func(name string, args []string) (runner.Result, error) {
		return runner.Result{Stderr: "failed to process audio", ExitCode: 1}, errors.New("exit status 1")
	}}

	transcriber := NewWhisperTranscriber(cfg, fake)
	_, err := transcriber.Transcribe(context.Background(), asset)

	require.Error(t, err)
	assert.Equal(t, domain.ErrExternalService, domain.CodeOf(err))
}

func TestTranscribe_EmptyTranscript(t *testing.T) {
	cfg, asset := testEnv(t)
	fake := transcribingRunner(t, "  \n ")

	transcriber := NewWhisperTranscriber(cfg, fake)
	_, err := transcriber.Transcribe(context.Background(), asset)

	require.Error(t, err)
	assert.Equal(t, domain.ErrEmptyContent, domain.CodeOf(err))
}

func TestTranscribe_TranscriptBelowMinimum(t *testing.T) {
	cfg, asset := testEnv(t)
	fake := transcribingRunner(t, "too short")

	transcriber := NewWhisperTranscriber(cfg, fake)
	_, err := transcriber.Transcribe(context.Background(), asset)

	require.Error(t, err)
	assert.Equal(t, domain.ErrEmptyContent, domain.CodeOf(err))
}
