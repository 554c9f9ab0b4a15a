package components

import (
	"fmt"
	"strings"

	"github.com/ChestnutLUO/chromium-certificate/internal/electron"
	"github.com/ChestnutLUO/chromium-certificate/internal/models"
	"github.com/ChestnutLUO/chromium-certificate/internal/ui"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// DetailView shows one detected application as highlighted YAML in a viewport
type DetailView struct {
	viewport    viewport.Model
	highlighter *ui.Highlighter

	App        *models.DetectedApplication
	TotalLines int

	// Dimensions
	Width  int
	Height int

	headerStyle lipgloss.Style
	infoStyle   lipgloss.Style
	borderStyle lipgloss.Style
}

// NewDetailView creates a new DetailView with viewport
func NewDetailView() *DetailView {
	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	return &DetailView{
		viewport:    vp,
		highlighter: ui.NewHighlighter(),
		Width:       80,
		Height:      20,
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#89b4fa")),
		infoStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6c7086")),
		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#89b4fa")).
			Padding(0, 1),
	}
}

// SetSize updates the viewport dimensions
func (d *DetailView) SetSize(width, height int) {
	d.Width = width
	d.Height = height

	// Account for header (3 lines) and border (2 lines)
	contentHeight := height - 5
	if contentHeight < 5 {
		contentHeight = 5
	}
	contentWidth := width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	d.viewport.Width = contentWidth
	d.viewport.Height = contentHeight
}

// Load renders app into the viewport
func (d *DetailView) Load(app *models.DetectedApplication) error {
	if app == nil {
		return fmt.Errorf("no application selected")
	}

	data, err := yaml.Marshal(app)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", app.Name, err)
	}

	var b strings.Builder
	b.WriteString(d.highlighter.Highlight(string(data), "yaml"))
	if notes := releaseNotes(app); len(notes) > 0 {
		b.WriteString("\n")
		for _, line := range notes {
			b.WriteString(d.infoStyle.Render(line) + "\n")
		}
	}

	content := strings.TrimRight(b.String(), "\n")
	d.App = app
	d.TotalLines = strings.Count(content, "\n") + 1
	d.viewport.SetContent(content)
	d.viewport.GotoTop()
	return nil
}

// releaseNotes explains the verdict against the release line's first fixed version
func releaseNotes(app *models.DetectedApplication) []string {
	if !app.HasVersion() {
		return nil
	}
	v, ok := electron.ParseVersion(app.RuntimeVersion)
	if !ok {
		return []string{"# version could not be parsed, treated as not fixed"}
	}
	if floor, ok := electron.Floor(v.Major); ok {
		return []string{fmt.Sprintf("# fixed in Electron %s and later", floor)}
	}
	if v.Fixed() {
		return []string{fmt.Sprintf("# Electron %d ships the fix", v.Major)}
	}
	return []string{fmt.Sprintf("# Electron %d predates the fix", v.Major)}
}

// Update handles messages for viewport scrolling
func (d *DetailView) Update(msg tea.Msg) (*DetailView, tea.Cmd) {
	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return d, cmd
}

// View renders the detail pane
func (d *DetailView) View() string {
	if d.App == nil {
		return d.borderStyle.Width(d.Width).Height(d.Height).Render(d.infoStyle.Render("Nothing selected"))
	}

	var b strings.Builder

	header := d.headerStyle.Render(fmt.Sprintf("%s %s", d.App.Category.Icon(), d.App.Name))
	kind := d.infoStyle.Render("  " + d.App.Category.DisplayName())
	b.WriteString(header + kind)
	if verdict := ui.RenderVerdict(d.App.Resolved()); verdict != "" {
		b.WriteString("  " + verdict)
	}
	b.WriteString("\n")

	b.WriteString(d.infoStyle.Render(d.App.InstallPath) + "\n")

	b.WriteString(lipgloss.NewStyle().
		Foreground(lipgloss.Color("#313244")).
		Render(strings.Repeat("─", max(0, d.Width-4))) + "\n")

	b.WriteString(d.viewport.View())

	if d.TotalLines > d.viewport.Height {
		scrollInfo := fmt.Sprintf("─── %.0f%% ───", d.viewport.ScrollPercent()*100)
		b.WriteString("\n" + d.infoStyle.Render(scrollInfo))
	}

	return d.borderStyle.
		Width(d.Width).
		Height(d.Height).
		Render(b.String())
}

// ScrollUp scrolls up one line
func (d *DetailView) ScrollUp() {
	d.viewport.LineUp(1)
}

// ScrollDown scrolls down one line
func (d *DetailView) ScrollDown() {
	d.viewport.LineDown(1)
}

// PageUp scrolls up by a page
func (d *DetailView) PageUp() {
	d.viewport.ViewUp()
}

// PageDown scrolls down by a page
func (d *DetailView) PageDown() {
	d.viewport.ViewDown()
}

// GoToTop goes to the beginning
func (d *DetailView) GoToTop() {
	d.viewport.GotoTop()
}

// GoToBottom goes to the end
func (d *DetailView) GoToBottom() {
	d.viewport.GotoBottom()
}
