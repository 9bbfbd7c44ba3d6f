package news

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dysonx/energynews/internal/feeds"
)

const previewMaxRunes = 400

// Query parameters stripped during link normalization. Everything that only
// identifies a marketing campaign, never the article itself.
var trackingParams = map[string]bool{
	"fbclid": true,
	"gclid":  true,
	"mc_cid": true,
	"mc_eid": true,
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Normalize converts a raw feed entry into a canonical record. Entries
// missing both title and link are rejected.
func Normalize(e feeds.Entry) (*Record, error) {
	title := strings.TrimSpace(e.Title)
	link := strings.TrimSpace(e.Link)
	if title == "" && link == "" {
		return nil, fmt.Errorf("entry from %q has neither title nor link", e.Source)
	}

	source := e.Source
	if source == "" {
		source = "Unknown Source"
	}

	published := e.Published
	if published == "" {
		published = e.Updated
	}

	return &Record{
		Title:        title,
		Link:         link,
		LinkKey:      NormalizeURL(link),
		Source:       source,
		PublishedRaw: published,
		SortTS:       resolveSortTS(e),
		GUID:         strings.TrimSpace(e.GUID),
		Preview:      MakePreview("", e.Summary),
	}, nil
}

// NormalizeURL strips tracking parameters and a single trailing slash so
// that syndicated copies of the same link collapse to one key. It is
// deterministic and idempotent: normalizing twice yields the same key.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return raw
	}

	query := u.Query()
	for param := range query {
		lower := strings.ToLower(param)
		if trackingParams[lower] || strings.HasPrefix(lower, "utm_") {
			query.Del(param)
		}
	}
	u.RawQuery = query.Encode() // Encode sorts keys, keeping output stable
	u.Fragment = ""

	if u.Path == "" || u.Path == "/" {
		u.Path = "/"
	} else {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String()
}

// Timestamp layouts tried in order for each raw field. Layouts without a
// zone are interpreted as GMT/UTC.
var timeLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// resolveSortTS evaluates every timestamp the feed offered and keeps the
// maximum that parsed. 0 means "unknown"; such records sort last.
func resolveSortTS(e feeds.Entry) int64 {
	var best int64
	consider := func(t time.Time) {
		if ts := t.Unix(); ts > best {
			best = ts
		}
	}

	if e.PublishedAt != nil {
		consider(*e.PublishedAt)
	}
	if e.UpdatedAt != nil {
		consider(*e.UpdatedAt)
	}
	for _, raw := range []string{e.Published, e.Updated} {
		if t, ok := parseTimestamp(raw); ok {
			consider(t)
		}
	}
	return best
}

func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	// Numeric epoch seconds, sometimes seen in custom feeds.
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil && secs > 0 {
		return time.Unix(secs, 0), true
	}
	return time.Time{}, false
}

// MakePreview builds the display preview: the first two non-empty
// paragraphs of the extracted article text, or the markup-stripped feed
// summary when no text is available. Truncation appends "..." so consumers
// can tell a cut preview from a short one.
func MakePreview(fullText, feedSummary string) string {
	var preview string

	if paragraphs := firstParagraphs(fullText, 2); len(paragraphs) > 0 {
		preview = strings.Join(paragraphs, " ")
	} else {
		preview = tagPattern.ReplaceAllString(html.UnescapeString(feedSummary), " ")
	}
	preview = strings.Join(strings.Fields(preview), " ")

	runes := []rune(preview)
	if len(runes) > previewMaxRunes {
		preview = string(runes[:previewMaxRunes-3]) + "..."
	}
	return preview
}

func firstParagraphs(text string, n int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(text, "\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
		if len(out) >= n {
			break
		}
	}
	return out
}
