package ranking

// VideoCandidate is a video returned by the search collaborator, in its
// original search order.
type VideoCandidate struct {
	VideoID string `json:"videoId"`
	Title   string `json:"title"`
	URL     string `json:"url"`
}

// RankedVideo carries a cosine score in [-1, 1]. Only the relative order of a
// ranking is meaningful.
type RankedVideo struct {
	Title string  `json:"title"`
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}

const watchURLPrefix = "https://www.youtube.com/watch?v="

// WatchURL returns the public watch page for a video id.
func WatchURL(videoID string) string {
	return watchURLPrefix + videoID
}
