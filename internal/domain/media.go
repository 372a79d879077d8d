package domain

import (
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"
)

var youtubeHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
	"youtu.be":        true,
	"www.youtu.be":    true,
}

var (
	shortsPathRe = regexp.MustCompile(`^/shorts/([^/]+)`)
	embedPathRe  = regexp.MustCompile(`^/embed/([^/]+)`)
)

// MediaReference identifies a single source video. It is created from user
// input once, validated up front, and never mutated afterwards.
type MediaReference struct {
	URL     string
	VideoID string
}

// ParseMediaReference validates a video URL and extracts its video ID.
// Supported forms: youtube.com/watch?v=ID, youtu.be/ID, /shorts/ID, /embed/ID.
// It fails with a VALIDATION_ERROR before any network call is made.
func ParseMediaReference(rawURL string) (*MediaReference, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, NewValidationError("video URL is required")
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, NewValidationError("video URL is malformed")
	}

	host := strings.ToLower(parsed.Host)
	if !youtubeHosts[host] {
		return nil, NewValidationError("URL is not a supported video source")
	}

	videoID := ""
	switch {
	case host == "youtu.be" || host == "www.youtu.be":
		videoID = strings.Split(strings.Trim(parsed.Path, "/"), "/")[0]
	case parsed.Path == "/watch":
		videoID = parsed.Query().Get("v")
	default:
		if m := shortsPathRe.FindStringSubmatch(parsed.Path); m != nil {
			videoID = m[1]
		} else if m := embedPathRe.FindStringSubmatch(parsed.Path); m != nil {
			videoID = m[1]
		}
	}

	if videoID == "" {
		return nil, NewValidationError("could not extract a video ID from URL")
	}

	return &MediaReference{URL: trimmed, VideoID: videoID}, nil
}

// AudioAsset is the normalized audio extracted from a MediaReference. It is
// owned exclusively by the pipeline run that produced it; Release must be
// called exactly once when the run terminates, success or failure.
type AudioAsset struct {
	Path       string
	Format     string
	SampleRate int
	Channels   int
	Duration   time.Duration

	// workDir is the per-run temporary directory holding the audio file.
	workDir string
}

// NewAudioAsset wraps a normalized audio file rooted in its run's temp directory.
func NewAudioAsset(path, workDir, format string, sampleRate, channels int, duration time.Duration) *AudioAsset {
	return &AudioAsset{
		Path:       path,
		Format:     format,
		SampleRate: sampleRate,
		Channels:   channels,
		Duration:   duration,
		workDir:    workDir,
	}
}

// Release removes the asset's temporary storage. Safe to call on every exit
// path; subsequent calls are no-ops.
func (a *AudioAsset) Release() error {
	if a == nil || a.workDir == "" {
		return nil
	}
	dir := a.workDir
	a.workDir = ""
	return os.RemoveAll(dir)
}

// Transcript is the text output of speech-to-text inference over an
// AudioAsset. Immutable once produced; consumed by exactly one generation call.
type Transcript struct {
	Text     string
	Language string
}
