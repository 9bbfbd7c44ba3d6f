package render

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dysonx/energynews/internal/news"
)

func sampleRecord(title string) *news.Record {
	return &news.Record{
		Title:        title,
		Link:         "https://example.com/" + title,
		LinkKey:      "https://example.com/" + title,
		Source:       "Energy Wire",
		PublishedRaw: "Mon, 02 Jun 2025 09:00:00 GMT",
		Preview:      "A short preview of " + title + ".",
		SummaryEN:    "English summary of " + title + ".",
		SummaryZH:    "关于" + title + "的中文摘要。",
		Tags:         []string{"Storage", "PV"},
	}
}

func testRenderer(t *testing.T) (*Renderer, string) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "posts")
	r := NewRenderer(dir, "https://media.example.com")
	r.now = func() time.Time { return time.Date(2025, 6, 2, 12, 30, 0, 0, time.UTC) }
	return r, dir
}

func TestWritePages(t *testing.T) {
	r, dir := testRenderer(t)

	pages := [][]*news.Record{
		{sampleRecord("one"), sampleRecord("two"), sampleRecord("three")},
		{sampleRecord("four")},
	}
	require.NoError(t, r.WritePages(pages))

	page1, err := os.ReadFile(filepath.Join(dir, "page1.html"))
	require.NoError(t, err)
	html := string(page1)

	assert.Contains(t, html, "<!-- Last Updated: 2025-06-02 12:30 UTC -->")
	assert.Contains(t, html, `data-category="Storage"`)
	assert.Contains(t, html, `data-summary-en="English summary of one."`)
	assert.Contains(t, html, `data-summary-zh="关于one的中文摘要。"`)
	assert.Contains(t, html, "#Storage #PV")
	assert.Contains(t, html, `<span class="source">Energy Wire</span>`)
	assert.Contains(t, html, "switch-lang-zh")

	// Numbering is global, so page two starts where page one left off.
	page2, err := os.ReadFile(filepath.Join(dir, "page2.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page2), "<h3>4. ")
}

func TestWritePages_EscapesMarkup(t *testing.T) {
	r, dir := testRenderer(t)

	hostile := sampleRecord("x")
	hostile.Title = `<script>alert("pwn")</script>`
	require.NoError(t, r.WritePages([][]*news.Record{{hostile}}))

	page, err := os.ReadFile(filepath.Join(dir, "page1.html"))
	require.NoError(t, err)
	assert.NotContains(t, string(page), "<script>alert")
	assert.Contains(t, string(page), "&lt;script&gt;")
}

func TestWritePages_FallbackCategory(t *testing.T) {
	r, dir := testRenderer(t)

	bare := sampleRecord("x")
	bare.Tags = nil
	require.NoError(t, r.WritePages([][]*news.Record{{bare}}))

	page, err := os.ReadFile(filepath.Join(dir, "page1.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), `data-category="General"`)
}

func TestWritePages_PageCountAndSitemap(t *testing.T) {
	r, dir := testRenderer(t)

	pages := [][]*news.Record{{sampleRecord("a")}, {sampleRecord("b")}}
	require.NoError(t, r.WritePages(pages))

	count, err := os.ReadFile(filepath.Join(dir, "page-count.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_pages": 2}`, string(count))

	sitemap, err := os.ReadFile(filepath.Join(filepath.Dir(dir), "sitemap.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(sitemap), "<loc>https://media.example.com/</loc>")
	assert.Contains(t, string(sitemap), "<loc>https://media.example.com/page1.html</loc>")
	assert.Contains(t, string(sitemap), "<loc>https://media.example.com/page2.html</loc>")
	assert.NotContains(t, string(sitemap), "page3.html")
}

func TestWritePages_ZeroPagesTouchesNothing(t *testing.T) {
	r, dir := testRenderer(t)

	require.NoError(t, os.MkdirAll(dir, 0o755))
	existing := filepath.Join(dir, "page1.html")
	require.NoError(t, os.WriteFile(existing, []byte("previous run"), 0o644))

	require.NoError(t, r.WritePages(nil))

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "previous run", string(data))

	_, err = os.Stat(filepath.Join(dir, "page-count.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestWritePages_NoSitemapWithoutBaseURL(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "posts")
	r := NewRenderer(dir, "")

	require.NoError(t, r.WritePages([][]*news.Record{{sampleRecord("a")}}))

	_, err := os.Stat(filepath.Join(root, "sitemap.xml"))
	assert.True(t, os.IsNotExist(err))
}
