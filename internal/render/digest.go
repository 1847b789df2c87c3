package render

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"newsbrief/internal/domain"
)

// Renderer turns a curated list into the HTML digest, split into a
// top-stories section and an other-updates section.
type Renderer struct {
	topStoryScore float64
	tmpl          *template.Template
}

// New builds a renderer; topStoryScore is the bucket boundary (default 7).
func New(topStoryScore float64) *Renderer {
	if topStoryScore <= 0 {
		topStoryScore = 7.0
	}
	return &Renderer{
		topStoryScore: topStoryScore,
		tmpl:          template.Must(template.New("digest").Parse(digestTemplate)),
	}
}

type digestData struct {
	Date         string
	TopStories   []itemData
	OtherUpdates []itemData
}

type itemData struct {
	Title   string
	URL     string
	Source  string
	Score   string
	Summary string
	Tags    []string
}

// Render emits the full document: banner with the run date, the two score
// buckets in curator order (each omitted entirely when empty), and a fixed
// footer. All item text is escaped by the template engine.
func (r *Renderer) Render(items []domain.ScoredItem, now time.Time) (string, error) {
	data := digestData{Date: now.Format("January 2, 2006")}
	for _, it := range items {
		entry := itemData{
			Title:   it.Item.Title,
			URL:     it.Item.URL,
			Source:  it.Item.Source,
			Score:   fmt.Sprintf("%.1f", it.Score),
			Summary: it.Item.Summary,
			Tags:    it.Tags,
		}
		if it.Score >= r.topStoryScore {
			data.TopStories = append(data.TopStories, entry)
		} else {
			data.OtherUpdates = append(data.OtherUpdates, entry)
		}
	}

	var b strings.Builder
	if err := r.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("execute digest template: %w", err)
	}
	return b.String(), nil
}

const digestTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Weekly News Digest</title>
<style>
body { font-family: Arial, Helvetica, sans-serif; max-width: 680px; margin: 0 auto; color: #222; }
.banner { background: #1a73e8; color: #fff; padding: 24px; text-align: center; }
.banner h1 { margin: 0; }
.section-title { border-bottom: 2px solid #1a73e8; padding-bottom: 4px; }
.item { padding: 12px 0; border-bottom: 1px solid #eee; }
.item h3 { margin: 0 0 4px; }
.meta { color: #666; font-size: 13px; margin: 0 0 6px; }
.tag { background: #e8f0fe; color: #1a73e8; border-radius: 10px; padding: 2px 8px; font-size: 12px; margin-right: 4px; }
.footer { color: #888; font-size: 12px; text-align: center; padding: 20px 0; }
</style>
</head>
<body>
<div class="banner">
<h1>Weekly News Digest</h1>
<p>{{.Date}}</p>
</div>
{{if .TopStories}}<h2 class="section-title">Top Stories</h2>
{{range .TopStories}}{{template "item" .}}{{end}}{{end}}
{{if .OtherUpdates}}<h2 class="section-title">Other Updates</h2>
{{range .OtherUpdates}}{{template "item" .}}{{end}}{{end}}
<div class="footer">
<p>You are receiving this digest because you subscribed to our newsletter.</p>
</div>
</body>
</html>
{{define "item"}}<div class="item">
<h3><a href="{{.URL}}">{{.Title}}</a></h3>
<p class="meta">{{.Source}} &middot; relevance {{.Score}}</p>
{{if .Summary}}<p>{{.Summary}}</p>{{end}}
{{if .Tags}}<p>{{range .Tags}}<span class="tag">{{.}}</span>{{end}}</p>{{end}}
</div>
{{end}}`
