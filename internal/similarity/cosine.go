package similarity

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrZeroMagnitude     = errors.New("zero magnitude vector")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// NumericError reports a vector pair that has no defined cosine similarity.
type NumericError struct {
	Err  error
	LenA int
	LenB int
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("cosine similarity undefined (len %d vs %d): %v", e.LenA, e.LenB, e.Err)
}

func (e *NumericError) Unwrap() error {
	return e.Err
}

// Cosine returns dot(a,b) / (|a| * |b|), accumulated in float64.
// Empty, zero-magnitude or unequal-length inputs yield a *NumericError.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, &NumericError{Err: ErrDimensionMismatch, LenA: len(a), LenB: len(b)}
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, &NumericError{Err: ErrZeroMagnitude, LenA: len(a), LenB: len(b)}
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, &NumericError{Err: ErrZeroMagnitude, LenA: len(a), LenB: len(b)}
	}

	// rounding can push a parallel pair just past 1
	return math.Max(-1, math.Min(1, score)), nil
}
