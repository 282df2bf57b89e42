package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/askimage/internal/wizard"
	"github.com/yuin/goldmark"
)

//go:embed templates/page.html templates/intro.md static/style.css
var assets embed.FS

type pageRenderer struct {
	tmpl  *template.Template
	intro template.HTML
	css   []byte
}

// pageData is what templates/page.html renders.
type pageData struct {
	View  wizard.View
	Intro template.HTML
	Flash *wizard.Result
}

func newPageRenderer() *pageRenderer {
	tmpl := template.Must(template.New("page.html").Funcs(template.FuncMap{
		"percent": func(score float64) string {
			return fmt.Sprintf("%.1f%%", score*100)
		},
	}).ParseFS(assets, "templates/page.html"))

	css, err := assets.ReadFile("static/style.css")
	if err != nil {
		panic(err)
	}

	return &pageRenderer{
		tmpl:  tmpl,
		intro: renderMarkdown(mustRead("templates/intro.md")),
		css:   css,
	}
}

func mustRead(name string) []byte {
	data, err := assets.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return data
}

// renderMarkdown converts trusted embedded markdown into HTML.
func renderMarkdown(source []byte) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert(source, &buf); err != nil {
		slog.Error("Unable to render markdown", "err", err)
		return ""
	}
	return template.HTML(buf.String()) // #nosec G203 -- embedded content
}

func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	h.renderPage(w, h.wizard.View(session), nil, http.StatusOK)
}

func (h *Handler) renderPage(w http.ResponseWriter, view wizard.View, flash *wizard.Result, code int) {
	var buf bytes.Buffer
	err := h.page.tmpl.Execute(&buf, pageData{
		View:  view,
		Intro: h.page.intro,
		Flash: flash,
	})
	if err != nil {
		slog.Error("Unable to render page", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("Unable to write page", "err", err)
	}
}

func (h *Handler) HandleStylesheet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css")
	if _, err := w.Write(h.page.css); err != nil {
		slog.Error("Unable to write stylesheet", "err", err)
	}
}

// HandlePreview serves the session's preview image, or 404 when there is none.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	data, ok := h.wizard.Preview(session)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(data); err != nil {
		slog.Error("Unable to write preview", "err", err)
	}
}
