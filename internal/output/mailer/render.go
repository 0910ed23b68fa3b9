// Package mailer renders the newsletter HTML from embedded templates and
// delivers it via the SendGrid v3 mail API.
package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/smartinvest/markets-brief/internal/core/domain"
	"github.com/smartinvest/markets-brief/internal/output/compose"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// rawHTML marks model-authored fragments as pre-rendered HTML so the
// template engine does not escape them.
func rawHTML(s string) template.HTML { return template.HTML(s) } //nolint:gosec

type dailyData struct {
	Brand     string
	Date      string
	Subject   string
	Preheader string
	MoodLine  string
	Content   dailyHTML
}

type dailyHTML struct {
	NewsHeadline   string
	IntroParagraph string
	Top5HTML       template.HTML
	MacroHTML      template.HTML
	WatchlistHTML  template.HTML
	SnapshotHTML   template.HTML
}

type weeklyData struct {
	Brand     string
	Date      string
	Subject   string
	Preheader string
	Content   weeklyHTML
}

type weeklyHTML struct {
	Headline   string
	Intro      string
	ThemesHTML template.HTML
}

// Renderer produces final email HTML.
type Renderer struct {
	brand     string
	templates *template.Template
}

func NewRenderer(brand string) (*Renderer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}

	return &Renderer{brand: brand, templates: templates}, nil
}

// RenderDaily renders the daily brief email body.
func (r *Renderer) RenderDaily(content *compose.BriefContent, mood *domain.MoodSummary, subject string, date time.Time) (string, error) {
	data := dailyData{
		Brand:     r.brand,
		Date:      date.Format("Monday, Jan 2, 2006"),
		Subject:   subject,
		Preheader: content.Preheader,
		Content: dailyHTML{
			NewsHeadline:   content.NewsHeadline,
			IntroParagraph: content.IntroParagraph,
			Top5HTML:       rawHTML(content.Top5HTML),
			MacroHTML:      rawHTML(content.MacroHTML),
			WatchlistHTML:  rawHTML(content.WatchlistHTML),
			SnapshotHTML:   rawHTML(content.SnapshotHTML),
		},
	}

	if mood != nil {
		data.MoodLine = fmt.Sprintf("Market mood: %s %s", mood.Signal, mood.Label)
	}

	return r.execute("daily.html.tmpl", data)
}

// RenderWeekly renders the weekly recap email body.
func (r *Renderer) RenderWeekly(content *compose.WeeklyContent, subject string, date time.Time) (string, error) {
	data := weeklyData{
		Brand:     r.brand,
		Date:      date.Format("Monday, Jan 2, 2006"),
		Subject:   subject,
		Preheader: content.Preheader,
		Content: weeklyHTML{
			Headline:   content.Headline,
			Intro:      content.Intro,
			ThemesHTML: rawHTML(content.ThemesHTML),
		},
	}

	return r.execute("weekly.html.tmpl", data)
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}

	return buf.String(), nil
}
