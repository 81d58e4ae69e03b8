package evidence

import "strings"

// Separator joins a title to its description and one news item to the next.
const Separator = " "

// NewsItem is a news article as handed over by the news search collaborator.
type NewsItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	SourceURL   string `json:"url"`
}

// Aggregate flattens the news set into the single text every candidate is
// compared against. Items are weighted equally and keep their input order.
// An empty set yields an empty string.
func Aggregate(items []NewsItem) string {
	if len(items) == 0 {
		return ""
	}

	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString(Separator)
		}
		b.WriteString(item.Title)
		b.WriteString(Separator)
		b.WriteString(item.Description)
	}
	return b.String()
}

// Titles returns the item titles in input order.
func Titles(items []NewsItem) []string {
	titles := make([]string, 0, len(items))
	for _, item := range items {
		titles = append(titles, item.Title)
	}
	return titles
}
