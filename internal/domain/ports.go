package domain

import (
	"context"
	"time"
)

// CacheError represents an error originating from the cache.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss is returned when a key is not found in the cache.
const ErrCacheMiss = CacheError("cache: key not found")

// AudioAcquirer fetches a video by reference and extracts a normalized audio
// asset into per-run temporary storage.
type AudioAcquirer interface {
	Acquire(ctx context.Context, ref *MediaReference) (*AudioAsset, error)
}

// Transcriber converts an audio asset into text. Implementations share one
// lazily loaded model across concurrent runs and make a single inference
// attempt per call.
type Transcriber interface {
	Transcribe(ctx context.Context, asset *AudioAsset) (*Transcript, error)
}

// QuizGenerator turns a transcript into a fully valid ten-question draft, or
// fails. Retry policy lives inside the implementation; callers never see a
// partial draft.
type QuizGenerator interface {
	Generate(ctx context.Context, transcript *Transcript) (*QuizDraft, error)
}

// Cache defines the interface (port) for caching operations.
// Implementations of this interface are the adapters (e.g., RedisCacheAdapter).
type Cache interface {
	// Get retrieves an item from the cache.
	// It returns ErrCacheMiss if the key is not found.
	Get(ctx context.Context, key string) (string, error)

	// Set adds an item to the cache, overwriting an existing item if one
	// exists. A zero expiration caches the item indefinitely.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Delete removes an item from the cache. A missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping checks the health of the cache service.
	Ping(ctx context.Context) error
}
