// Package embedding turns text into dense vectors for relevance scoring.
package embedding

import (
	"context"
	"errors"
)

var (
	// ErrEmptyInput indicates empty or nil input texts.
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrInvalidConfig indicates invalid provider configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// Embedder maps texts to vectors, one row per input, in input order. Rows
// need not be normalized.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider is an Embedder with a lifecycle.
type Provider interface {
	Embedder
	// Name identifies the backend, e.g. "fastembed".
	Name() string
	// Dimension returns the vector width, or 0 when not yet known.
	Dimension() int
	// Close releases model or connection resources.
	Close() error
}

func checkInput(ctx context.Context, texts []string) error {
	if len(texts) == 0 {
		return ErrEmptyInput
	}
	return ctx.Err()
}
