package httpapi

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"ollamaui/internal/query"
)

//go:embed assets/page.html.tmpl assets/intro.md assets/footer.md
var assets embed.FS

var pageTmpl = template.Must(template.New("page.html.tmpl").Funcs(template.FuncMap{
	"slider": formatSlider,
}).ParseFS(assets, "assets/page.html.tmpl"))

// pageData is what the page template renders for one cycle.
type pageData struct {
	Panel  query.Panel
	View   query.View
	Intro  template.HTML
	Footer template.HTML
}

// static markdown blocks, converted once
var (
	staticOnce sync.Once
	introHTML  template.HTML
	footerHTML template.HTML
)

func staticBlocks() (template.HTML, template.HTML) {
	staticOnce.Do(func() {
		md := goldmark.New(goldmark.WithExtensions(extension.GFM))
		introHTML = markdownAsset(md, "assets/intro.md")
		footerHTML = markdownAsset(md, "assets/footer.md")
	})
	return introHTML, footerHTML
}

// markdownAsset renders an embedded markdown file. The sources are trusted
// build-time assets, so the output is marked safe.
func markdownAsset(md goldmark.Markdown, name string) template.HTML {
	src, err := assets.ReadFile(name)
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(string(src)))
	}
	return template.HTML(buf.String())
}

// formatSlider prints a slider value on its 0.1 grid.
func formatSlider(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// renderPage writes the full page for a view.
func renderPage(w http.ResponseWriter, panel query.Panel, v query.View) {
	intro, footer := staticBlocks()
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, pageData{Panel: panel, View: v, Intro: intro, Footer: footer}); err != nil {
		zlog.Error().Err(err).Msg("render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
