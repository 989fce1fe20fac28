// Package view projects a selector.Form onto HTML and JSON. Nothing here
// holds form state.
package view

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"sync"

	"causelist/internal/causelist/models"
	"causelist/internal/causelist/selector"
)

//go:embed templates/form.html
var templateFS embed.FS

var formTemplate = template.Must(template.ParseFS(templateFS, "templates/form.html"))

var selectTitles = map[models.Level]string{
	models.LevelState:    "State",
	models.LevelDistrict: "District",
	models.LevelComplex:  "Court Complex",
	models.LevelCourt:    "Court",
}

// Select is one rendered dropdown.
type Select struct {
	ID       string
	Title    string
	Options  []models.Option
	Selected string
	Loading  bool
	// Disabled is set while an ancestor is unset.
	Disabled bool
}

// Page is the data behind the form template.
type Page struct {
	Selects []Select
	Date    string
	Alerts  []string
	Result  *models.SubmitResult
}

// NewPage builds the page for f, showing alerts once.
func NewPage(f selector.Form, alerts []string) Page {
	p := Page{
		Date:   f.Selection.Date,
		Alerts: alerts,
		Result: f.Result,
	}
	for _, level := range models.Levels {
		_, ready := f.Selection.Path(level)
		p.Selects = append(p.Selects, Select{
			ID:       level.String(),
			Title:    selectTitles[level],
			Options:  f.List(level).Options(),
			Selected: f.Selection.Value(level),
			Loading:  f.Loading[level],
			Disabled: !ready,
		})
	}
	return p
}

// RenderForm writes the HTML page.
func RenderForm(w io.Writer, page Page) error {
	if err := formTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("render form: %w", err)
	}
	return nil
}

// FormJSON is the API projection of a form.
type FormJSON struct {
	Selection models.Selection           `json:"selection"`
	Options   map[string][]models.Option `json:"options"`
	Loading   map[string]bool            `json:"loading"`
	Result    *models.SubmitResult       `json:"result,omitempty"`
	Alerts    []string                   `json:"alerts,omitempty"`
	Version   uint64                     `json:"version"`
}

func NewFormJSON(f selector.Form, alerts []string) FormJSON {
	out := FormJSON{
		Selection: f.Selection,
		Options:   make(map[string][]models.Option, len(models.Levels)),
		Loading:   make(map[string]bool, len(models.Levels)),
		Result:    f.Result,
		Alerts:    alerts,
		Version:   f.Version,
	}
	for _, level := range models.Levels {
		out.Options[level.String()] = f.List(level).Options()
		out.Loading[level.String()] = f.Loading[level]
	}
	return out
}

// FlashAlerter queues alerts until the next render drains them.
type FlashAlerter struct {
	mu       sync.Mutex
	messages []string
}

func (a *FlashAlerter) Alert(_ context.Context, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, message)
}

// Drain returns and forgets the queued alerts.
func (a *FlashAlerter) Drain() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.messages
	a.messages = nil
	return out
}
