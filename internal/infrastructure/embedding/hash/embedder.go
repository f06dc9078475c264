// Package hash implements the deterministic demo embedder: a SHA-256
// digest normalized to [0,1] and cycled out to the index dimension. It
// produces stable vectors without any model dependency, which is all the
// demo corpus needs; real deployments switch to the Ollama embedder.
package hash

import (
	"context"
	"crypto/sha256"
)

const defaultDim = 384

type Embedder struct {
	dim int
}

func New(dim int) *Embedder {
	if dim <= 0 {
		dim = defaultDim
	}
	return &Embedder{dim: dim}
}

func (e *Embedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.vector(text)
	}
	return out, nil
}

func (e *Embedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return e.vector(text), nil
}

func (e *Embedder) vector(text string) []float32 {
	digest := sha256.Sum256([]byte(text))
	v := make([]float32, e.dim)
	for i := range v {
		v[i] = float32(digest[i%len(digest)]) / 255.0
	}
	return v
}
