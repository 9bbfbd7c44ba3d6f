// Package render writes the paginated records out as static HTML pages,
// plus the page-count manifest and sitemap the site shell reads.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dysonx/energynews/internal/metrics"
	"github.com/dysonx/energynews/internal/news"
)

var postTmpl = template.Must(template.New("post").Parse(`<div class="news-post" data-category="{{.Category}}" data-title="{{.TitleLower}}" data-summary="{{.SummaryLower}}">
  <h3>{{.Index}}. <a href="{{.Link}}" target="_blank" rel="noopener noreferrer" class="news-link">{{.Title}}</a></h3>
  <div class="meta"><span class="source">{{.Source}}</span> | <span class="date">{{.Published}}</span></div>
  <p class="preview">{{.Preview}}</p>
  <p class="summary" data-summary-en="{{.SummaryEN}}" data-summary-zh="{{.SummaryZH}}">{{.SummaryEN}}</p>
  <div class="tags">{{.TagLine}}</div>
</div>
`))

// The site shell posts switch-lang messages into each page's iframe.
const langToggleScript = `
<!-- Lang toggle support -->
<script>
window.addEventListener("message", (event) => {
  if (!event.data) return;
  const summaries = document.querySelectorAll(".summary");
  if (event.data === "switch-lang-zh") {
    summaries.forEach(el => el.textContent = el.dataset.summaryZh || el.dataset.summaryEn);
  }
  if (event.data === "switch-lang-en") {
    summaries.forEach(el => el.textContent = el.dataset.summaryEn || "");
  }
});
</script>
`

type post struct {
	Index        int
	Title        string
	TitleLower   string
	Link         string
	Source       string
	Published    string
	Preview      string
	SummaryEN    string
	SummaryZH    string
	SummaryLower string
	Category     string
	TagLine      string
}

// Renderer writes pageN.html files into dir. The sitemap lands next to dir
// because the site serves pages from its root.
type Renderer struct {
	dir     string
	baseURL string
	now     func() time.Time
}

func NewRenderer(dir, baseURL string) *Renderer {
	return &Renderer{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

// WritePages emits one HTML document per page, then the page-count manifest
// and sitemap. Zero pages means something upstream went wrong; existing
// output is left untouched so the site keeps serving the previous run.
func (w *Renderer) WritePages(pages [][]*news.Record) error {
	if len(pages) == 0 {
		log.Printf("⚠️ no pages to render, keeping existing output")
		return nil
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	generated := w.now().UTC().Format("2006-01-02 15:04 UTC")
	index := 0
	for pg, page := range pages {
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "<!-- Last Updated: %s -->\n", generated)

		for _, r := range page {
			index++
			if err := postTmpl.Execute(&buf, toPost(index, r)); err != nil {
				return fmt.Errorf("render page %d: %w", pg+1, err)
			}
		}
		buf.WriteString(langToggleScript)

		name := fmt.Sprintf("page%d.html", pg+1)
		if err := os.WriteFile(filepath.Join(w.dir, name), buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		log.Printf("✅ wrote %s with %d posts", name, len(page))
	}

	metrics.Global.SetPagesWritten(int64(len(pages)))

	if err := w.writePageCount(len(pages)); err != nil {
		return err
	}
	return w.writeSitemap(len(pages))
}

func toPost(index int, r *news.Record) post {
	category := news.FallbackTag
	if len(r.Tags) > 0 {
		category = r.Tags[0]
	}
	hashtags := make([]string, len(r.Tags))
	for i, t := range r.Tags {
		hashtags[i] = "#" + t
	}

	return post{
		Index:        index,
		Title:        r.Title,
		TitleLower:   strings.ToLower(r.Title),
		Link:         r.Link,
		Source:       r.Source,
		Published:    r.PublishedRaw,
		Preview:      r.Preview,
		SummaryEN:    r.SummaryEN,
		SummaryZH:    r.SummaryZH,
		SummaryLower: strings.ToLower(r.SummaryEN),
		Category:     category,
		TagLine:      strings.Join(hashtags, " "),
	}
}

// writePageCount records the highest page number so the shell knows how far
// pagination goes.
func (w *Renderer) writePageCount(total int) error {
	data, err := json.MarshalIndent(map[string]int{"total_pages": total}, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(w.dir, "page-count.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write page count: %w", err)
	}
	return nil
}

// writeSitemap lists the site root plus every page. Skipped when no base
// URL is configured.
func (w *Renderer) writeSitemap(total int) error {
	if w.baseURL == "" {
		return nil
	}

	var buf bytes.Buffer
	buf.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	buf.WriteString("<urlset xmlns=\"http://www.sitemaps.org/schemas/sitemap/0.9\">\n")
	fmt.Fprintf(&buf, "  <url><loc>%s/</loc></url>\n", w.baseURL)
	for pg := 1; pg <= total; pg++ {
		fmt.Fprintf(&buf, "  <url><loc>%s/page%d.html</loc></url>\n", w.baseURL, pg)
	}
	buf.WriteString("</urlset>\n")

	path := filepath.Join(filepath.Dir(w.dir), "sitemap.xml")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write sitemap: %w", err)
	}
	return nil
}
