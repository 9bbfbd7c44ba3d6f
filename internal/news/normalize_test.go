package news

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dysonx/energynews/internal/feeds"
)

func TestNormalizeURL(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"strips utm parameters": {
			in:   "https://a.com/x?utm_source=y",
			want: "https://a.com/x",
		},
		"strips mixed tracking, keeps real params": {
			in:   "https://a.com/x?id=7&utm_campaign=launch&fbclid=abc&gclid=def",
			want: "https://a.com/x?id=7",
		},
		"strips single trailing slash": {
			in:   "https://a.com/news/",
			want: "https://a.com/news",
		},
		"root path stays a slash": {
			in:   "https://a.com/",
			want: "https://a.com/",
		},
		"bare host gets root slash": {
			in:   "https://a.com",
			want: "https://a.com/",
		},
		"already clean is unchanged": {
			in:   "https://a.com/x?id=7",
			want: "https://a.com/x?id=7",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := NormalizeURL(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, NormalizeURL(got), "normalization must be idempotent")
		})
	}
}

func TestNormalize_RejectsEntryWithoutTitleAndLink(t *testing.T) {
	_, err := Normalize(feeds.Entry{Source: "Some Feed", Summary: "text"})
	require.Error(t, err)

	// Title-only and link-only entries survive.
	r, err := Normalize(feeds.Entry{Title: "Only a title", Source: "Some Feed"})
	require.NoError(t, err)
	assert.Equal(t, "Only a title", r.Title)

	r, err = Normalize(feeds.Entry{Link: "https://a.com/x", Source: "Some Feed"})
	require.NoError(t, err)
	assert.Equal(t, "https://a.com/x", r.LinkKey)
}

func TestNormalize_SourceFallback(t *testing.T) {
	r, err := Normalize(feeds.Entry{Title: "t", Link: "https://a.com/x"})
	require.NoError(t, err)
	assert.Equal(t, "Unknown Source", r.Source)
}

func TestResolveSortTS_TakesMaxOfParsedFields(t *testing.T) {
	published := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r, err := Normalize(feeds.Entry{
		Title:       "t",
		Link:        "https://a.com/x",
		Source:      "s",
		PublishedAt: &published,
		Updated:     "Mon, 02 Jun 2025 08:30:00 GMT", // later than published
	})
	require.NoError(t, err)

	want := time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC).Unix()
	assert.Equal(t, want, r.SortTS)
}

func TestResolveSortTS_Formats(t *testing.T) {
	tests := map[string]struct {
		raw  string
		want time.Time
	}{
		"rfc822 with zone": {
			raw:  "Mon, 02 Jun 2025 08:30:00 +0200",
			want: time.Date(2025, 6, 2, 6, 30, 0, 0, time.UTC),
		},
		"rfc822 without zone assumes GMT": {
			raw:  "Mon, 02 Jun 2025 08:30:00",
			want: time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC),
		},
		"iso8601 with Z": {
			raw:  "2025-06-02T08:30:00Z",
			want: time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC),
		},
		"date only": {
			raw:  "2025-06-02",
			want: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		},
		"numeric epoch": {
			raw:  "1748853000",
			want: time.Unix(1748853000, 0),
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := parseTimestamp(tc.raw)
			require.True(t, ok)
			assert.Equal(t, tc.want.Unix(), got.Unix())
		})
	}
}

func TestResolveSortTS_UnparseableIsZero(t *testing.T) {
	r, err := Normalize(feeds.Entry{
		Title:     "t",
		Link:      "https://a.com/x",
		Source:    "s",
		Published: "next Tuesday, probably",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), r.SortTS)
}

func TestMakePreview(t *testing.T) {
	t.Run("prefers first two paragraphs of article text", func(t *testing.T) {
		text := "First paragraph.\n\nSecond paragraph.\n\nThird paragraph."
		got := MakePreview(text, "feed summary")
		assert.Equal(t, "First paragraph. Second paragraph.", got)
	})

	t.Run("falls back to feed summary with markup stripped", func(t *testing.T) {
		got := MakePreview("", "<p>Plain <b>summary</b> text.</p>")
		assert.Equal(t, "Plain summary text.", got)
	})

	t.Run("truncates to 400 runes with ellipsis marker", func(t *testing.T) {
		long := strings.Repeat("word ", 200)
		got := MakePreview("", long)
		assert.LessOrEqual(t, len([]rune(got)), 400)
		assert.True(t, strings.HasSuffix(got, "..."), "truncated preview must be marked")
	})

	t.Run("short preview is not marked", func(t *testing.T) {
		got := MakePreview("", "short text")
		assert.Equal(t, "short text", got)
	})
}
