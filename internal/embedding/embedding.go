// Package embedding provides text embedding with a remote-to-local provider
// fallback chain.
package embedding

import (
	"context"
	"errors"
	"net"
)

var (
	// ErrQuotaExceeded marks a quota or rate-limit failure from a remote
	// provider. It is recoverable: the chain downgrades to the local model
	// for the rest of the session.
	ErrQuotaExceeded = errors.New("provider quota exceeded")

	// ErrUnavailable means every configured provider has been exhausted.
	// It is fatal to the request that hit it.
	ErrUnavailable = errors.New("embedding providers unavailable")
)

// Embedder produces fixed-dimension vector embeddings for text. Empty
// input strings still produce a vector; batch output is positional with
// the input. Implementations must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Name() string
	Close() error
}

// IsTransient reports whether err is a failure class that should trigger
// the downgrade to the local provider: quota exhaustion, a timed-out call,
// or a network-level failure. Auth failures and malformed input are not
// transient and propagate as fatal.
func IsTransient(err error) bool {
	if errors.Is(err, ErrQuotaExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
