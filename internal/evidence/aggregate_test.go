package evidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name  string
		items []NewsItem
		want  string
	}{
		{name: "empty", items: nil, want: ""},
		{
			name:  "single",
			items: []NewsItem{{Title: "Storm hits coast", Description: "Flooding reported"}},
			want:  "Storm hits coast Flooding reported",
		},
		{
			name:  "missing description",
			items: []NewsItem{{Title: "Storm hits coast"}},
			want:  "Storm hits coast ",
		},
		{
			name: "order preserved",
			items: []NewsItem{
				{Title: "B", Description: "second"},
				{Title: "A", Description: "first"},
			},
			want: "B second A first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Aggregate(tt.items))
		})
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	items := []NewsItem{
		{Title: "One", Description: "x", SourceURL: "http://a"},
		{Title: "Two", SourceURL: "http://b"},
	}
	assert.Equal(t, Aggregate(items), Aggregate(items))
}

func TestTitles(t *testing.T) {
	items := []NewsItem{{Title: "One"}, {Title: "Two"}}
	assert.Equal(t, []string{"One", "Two"}, Titles(items))
	assert.Empty(t, Titles(nil))
}
