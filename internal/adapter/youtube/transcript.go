package youtube

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"factcheck/backend/internal/transcript"
)

const (
	DefaultTranscriptURL  = "https://www.youtube.com/api/timedtext"
	DefaultTranscriptLang = "en"

	maxTranscriptBytes = 4 << 20
)

type timedText struct {
	XMLName xml.Name `xml:"transcript"`
	Entries []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Text  string `xml:",chardata"`
	} `xml:"text"`
}

// TranscriptClient fetches caption tracks from the timedtext endpoint. Each
// video gets exactly one request.
type TranscriptClient struct {
	httpClient *http.Client
	baseURL    string
	lang       string
}

func NewTranscriptClient(baseURL, lang string, timeout time.Duration) *TranscriptClient {
	if baseURL == "" {
		baseURL = DefaultTranscriptURL
	}
	if lang == "" {
		lang = DefaultTranscriptLang
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TranscriptClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		lang:       lang,
	}
}

// Resolve reports ok=false when the video has no usable caption track. An
// error means the transcript source itself could not be reached.
func (c *TranscriptClient) Resolve(ctx context.Context, videoID string) (string, bool, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", false, fmt.Errorf("invalid transcript url: %w", err)
	}
	q := u.Query()
	q.Set("lang", c.lang)
	q.Set("v", videoID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("transcript request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden:
		slog.DebugContext(ctx, "no transcript available", "video_id", videoID, "status", resp.StatusCode)
		return "", false, nil
	case resp.StatusCode != http.StatusOK:
		return "", false, fmt.Errorf("transcript source returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTranscriptBytes))
	if err != nil {
		return "", false, fmt.Errorf("failed to read transcript: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return "", false, nil
	}

	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return "", false, fmt.Errorf("failed to decode transcript: %w", err)
	}

	parts := make([]string, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		// captions arrive entity-encoded a second time inside the xml
		parts = append(parts, html.UnescapeString(e.Text))
	}

	text := transcript.Normalize(strings.Join(parts, " "))
	if text == "" {
		return "", false, nil
	}
	return text, true, nil
}
