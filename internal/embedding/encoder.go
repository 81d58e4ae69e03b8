package embedding

import "context"

// Encoder maps text to a fixed-length vector. Implementations are created
// once per process and must be safe for concurrent use; they never retain
// or mutate the vectors they return.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// EncoderFunc adapts a plain function to Encoder.
type EncoderFunc func(ctx context.Context, text string) ([]float32, error)

func (f EncoderFunc) Encode(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}
