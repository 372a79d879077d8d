package acquisition

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quiz-tube/internal/adapter/runner"
	"quiz-tube/internal/config"
	"quiz-tube/internal/domain"
	"quiz-tube/internal/logger"

	"go.uber.org/zap"
)

const normalizedFileName = "audio-16k-mono.wav"

// Static assertion to ensure YTDLPAcquirer implements AudioAcquirer
var _ domain.AudioAcquirer = (*YTDLPAcquirer)(nil)

// probeMetadata is the subset of yt-dlp's -J output the stage inspects.
// Everything else in the dump is untrusted and ignored.
type probeMetadata struct {
	Title    string        `json:"title"`
	Duration float64       `json:"duration"`
	Formats  []probeFormat `json:"formats"`
}

type probeFormat struct {
	FormatID       string `json:"format_id"`
	ACodec         string `json:"acodec"`
	VCodec         string `json:"vcodec"`
	Filesize       int64  `json:"filesize"`
	FilesizeApprox int64  `json:"filesize_approx"`
}

// YTDLPAcquirer implements domain.AudioAcquirer with yt-dlp and ffmpeg.
// Each invocation works inside its own uniquely named temporary directory and
// leaves exactly one normalized WAV file behind for the transcription stage.
type YTDLPAcquirer struct {
	cfg    config.AcquisitionConfig
	runner runner.Runner

	mkdirTemp func(dir, pattern string) (string, error)
	removeAll func(path string) error
	stat      func(name string) (os.FileInfo, error)
	readDir   func(name string) ([]os.DirEntry, error)
	remove    func(name string) error
}

// NewYTDLPAcquirer constructs the production acquirer.
func NewYTDLPAcquirer(cfg config.AcquisitionConfig, r runner.Runner) *YTDLPAcquirer {
	return &YTDLPAcquirer{
		cfg:       cfg,
		runner:    r,
		mkdirTemp: os.MkdirTemp,
		removeAll: os.RemoveAll,
		stat:      os.Stat,
		readDir:   os.ReadDir,
		remove:    os.Remove,
	}
}

// Acquire fetches the referenced video's audio and normalizes it to 16 kHz
// mono WAV. Source duration and download size limits are enforced against the
// metadata probe before any media bytes are transferred.
func (a *YTDLPAcquirer) Acquire(ctx context.Context, ref *domain.MediaReference) (*domain.AudioAsset, error) {
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	meta, err := a.probe(ctx, ref)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(meta.Duration * float64(time.Second))
	if a.cfg.MaxDuration > 0 && duration > a.cfg.MaxDuration {
		return nil, domain.NewResourceLimitError(
			fmt.Sprintf("video duration %s exceeds the limit of %s", duration, a.cfg.MaxDuration))
	}

	audioSize, hasAudio := selectedAudioSize(meta.Formats)
	if !hasAudio {
		return nil, domain.NewUnsupportedMediaError("video has no audio track")
	}
	if a.cfg.MaxDownloadSize > 0 && audioSize > a.cfg.MaxDownloadSize {
		return nil, domain.NewResourceLimitError(
			fmt.Sprintf("audio stream size %d bytes exceeds the limit of %d bytes", audioSize, a.cfg.MaxDownloadSize))
	}

	workDir, err := a.mkdirTemp(a.cfg.TempDir, "quiztube-run-*")
	if err != nil {
		return nil, domain.NewInternalError("failed to create temporary workspace", err)
	}

	sourcePath, err := a.download(ctx, ref, workDir)
	if err != nil {
		_ = a.removeAll(workDir)
		return nil, err
	}

	outPath := filepath.Join(workDir, normalizedFileName)
	if err := a.transcode(ctx, sourcePath, outPath); err != nil {
		_ = a.removeAll(workDir)
		return nil, err
	}

	// Only the normalized file remains in the run's workspace.
	if err := a.remove(sourcePath); err != nil {
		logger.Get().Warn("failed to remove raw download",
			zap.String("path", sourcePath), zap.Error(err))
	}

	return domain.NewAudioAsset(outPath, workDir, "wav", 16000, 1, duration), nil
}

// probe dumps video metadata without downloading any media bytes.
func (a *YTDLPAcquirer) probe(ctx context.Context, ref *domain.MediaReference) (*probeMetadata, error) {
	result, err := a.runner.Run(ctx, a.cfg.YTDLPPath, "-J", "--no-playlist", ref.URL)
	if err != nil {
		logger.Get().Error("yt-dlp metadata probe failed",
			zap.String("video_id", ref.VideoID),
			zap.Int("exit_code", result.ExitCode),
			zap.String("stderr", result.Stderr))
		return nil, domain.NewExternalServiceError("video is unreachable or has been removed", err)
	}

	var meta probeMetadata
	if err := json.Unmarshal([]byte(result.Stdout), &meta); err != nil {
		return nil, domain.NewExternalServiceError("video metadata could not be parsed", err)
	}
	return &meta, nil
}

// download fetches the best audio-only stream into the run's workspace and
// returns the path of the downloaded file.
func (a *YTDLPAcquirer) download(ctx context.Context, ref *domain.MediaReference, workDir string) (string, error) {
	outTemplate := filepath.Join(workDir, "source.%(ext)s")
	args := []string{
		"-f", "bestaudio/best",
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"-o", outTemplate,
		ref.URL,
	}
	if a.cfg.MaxDownloadSize > 0 {
		args = append([]string{"--max-filesize", fmt.Sprintf("%d", a.cfg.MaxDownloadSize)}, args...)
	}

	result, err := a.runner.Run(ctx, a.cfg.YTDLPPath, args...)
	if err != nil {
		logger.Get().Error("yt-dlp download failed",
			zap.String("video_id", ref.VideoID),
			zap.Int("exit_code", result.ExitCode),
			zap.String("stderr", result.Stderr))
		return "", domain.NewExternalServiceError("failed to download audio", err)
	}

	entries, err := a.readDir(workDir)
	if err != nil {
		return "", domain.NewInternalError("failed to inspect workspace", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), "source.") {
			return filepath.Join(workDir, entry.Name()), nil
		}
	}
	return "", domain.NewExternalServiceError("download completed but no audio file was produced", nil)
}

// transcode normalizes the downloaded audio to the fixed format the
// transcription stage expects.
func (a *YTDLPAcquirer) transcode(ctx context.Context, sourcePath, outPath string) error {
	args := []string{
		"-y",
		"-i", sourcePath,
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		outPath,
	}

	result, err := a.runner.Run(ctx, a.cfg.FFmpegPath, args...)
	if err != nil {
		logger.Get().Error("ffmpeg transcoding failed",
			zap.Int("exit_code", result.ExitCode),
			zap.String("stderr", result.Stderr))
		return domain.NewExternalServiceError("audio transcoding failed", err)
	}

	if _, err := a.stat(outPath); err != nil {
		return domain.NewExternalServiceError("ffmpeg completed but output file is missing", err)
	}
	return nil
}

// selectedAudioSize reports whether any format carries audio, and the size of
// the largest audio-bearing stream with a known size (0 when unreported).
// The download requests bestaudio, which resolves to the highest-quality
// audio stream, so the limit must be checked against the largest candidate
// rather than a low-bitrate one that would never be fetched.
func selectedAudioSize(formats []probeFormat) (int64, bool) {
	hasAudio := false
	var largest int64
	for _, f := range formats {
		if f.ACodec == "" || f.ACodec == "none" {
			continue
		}
		hasAudio = true
		size := f.Filesize
		if size == 0 {
			size = f.FilesizeApprox
		}
		if size > largest {
			largest = size
		}
	}
	return largest, hasAudio
}
