package transcript

import "context"

// Resolver maps a video identifier to its transcript text. ok=false means the
// video has no usable transcript; err is reserved for failures of the source.
type Resolver interface {
	Resolve(ctx context.Context, videoID string) (text string, ok bool, err error)
}

type ResolverFunc func(ctx context.Context, videoID string) (string, bool, error)

func (f ResolverFunc) Resolve(ctx context.Context, videoID string) (string, bool, error) {
	return f(ctx, videoID)
}
