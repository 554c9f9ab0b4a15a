package components

import (
	"fmt"
	"strings"

	"github.com/ChestnutLUO/chromium-certificate/internal/models"
	"github.com/ChestnutLUO/chromium-certificate/internal/scanner"
	"github.com/ChestnutLUO/chromium-certificate/internal/ui"
)

// EmptyMessage is shown when the list has no rows
const EmptyMessage = "No Chromium-based apps found"

// AppList is a scrollable list of detected applications
type AppList struct {
	Apps    []*models.DetectedApplication
	Cursor  int
	Width   int
	Height  int
	Focused bool
	Title   string

	// Filter narrows the visible rows to one classification; "" shows all
	Filter  models.Classification
	visible []*models.DetectedApplication
}

// NewAppList creates a new app list
func NewAppList(apps []*models.DetectedApplication) *AppList {
	l := &AppList{
		Cursor:  0,
		Width:   60,
		Height:  15,
		Focused: true,
		Title:   "Applications",
	}
	l.SetApps(apps)
	return l
}

// SetApps replaces the list contents, keeping the current filter
func (l *AppList) SetApps(apps []*models.DetectedApplication) {
	l.Apps = apps
	l.refilter()
}

// SetFilter shows only apps of the given classification ("" for all)
func (l *AppList) SetFilter(category models.Classification) {
	l.Filter = category
	l.refilter()
}

// CycleFilter steps through all, then each classification in rule order
func (l *AppList) CycleFilter() {
	order := models.ClassificationOrder()
	if l.Filter == "" {
		l.SetFilter(order[0])
		return
	}
	for i, c := range order {
		if c == l.Filter {
			if i+1 < len(order) {
				l.SetFilter(order[i+1])
			} else {
				l.SetFilter("")
			}
			return
		}
	}
	l.SetFilter("")
}

// FilterLabel names the active filter
func (l *AppList) FilterLabel() string {
	if l.Filter == "" {
		return "All"
	}
	return l.Filter.DisplayName()
}

func (l *AppList) refilter() {
	if l.Filter == "" {
		l.visible = l.Apps
	} else {
		l.visible = scanner.Filter(l.Apps, l.Filter)
	}
	l.clampCursor()
}

func (l *AppList) clampCursor() {
	if l.Cursor >= len(l.visible) {
		l.Cursor = max(0, len(l.visible)-1)
	}
	if l.Cursor < 0 {
		l.Cursor = 0
	}
}

// MoveUp moves cursor up
func (l *AppList) MoveUp() {
	if l.Cursor > 0 {
		l.Cursor--
	}
}

// MoveDown moves cursor down
func (l *AppList) MoveDown() {
	if l.Cursor < len(l.visible)-1 {
		l.Cursor++
	}
}

// PageUp moves cursor up by a page
func (l *AppList) PageUp() {
	l.Cursor -= l.pageSize()
	l.clampCursor()
}

// PageDown moves cursor down by a page
func (l *AppList) PageDown() {
	l.Cursor += l.pageSize()
	l.clampCursor()
}

func (l *AppList) pageSize() int {
	pageSize := l.Height - 3
	if pageSize < 1 {
		pageSize = 10
	}
	return pageSize
}

// GoToFirst moves cursor to the first item
func (l *AppList) GoToFirst() {
	l.Cursor = 0
}

// GoToLast moves cursor to the last item
func (l *AppList) GoToLast() {
	if len(l.visible) > 0 {
		l.Cursor = len(l.visible) - 1
	}
}

// Current returns the app under the cursor
func (l *AppList) Current() *models.DetectedApplication {
	if len(l.visible) > 0 && l.Cursor < len(l.visible) {
		return l.visible[l.Cursor]
	}
	return nil
}

// VisibleApps returns the apps that pass the current filter
func (l *AppList) VisibleApps() []*models.DetectedApplication {
	return l.visible
}

// View renders the app list
func (l *AppList) View() string {
	var b strings.Builder

	title := l.Title
	if l.Filter != "" {
		title = fmt.Sprintf("%s · %s (%d/%d)", l.Title, l.FilterLabel(), len(l.visible), len(l.Apps))
	} else if len(l.Apps) > 0 {
		title = fmt.Sprintf("%s (%d)", l.Title, len(l.Apps))
	}
	b.WriteString(ui.PanelTitleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(ui.DividerStyle.Render(strings.Repeat("─", max(0, l.Width-2))))
	b.WriteString("\n")

	if len(l.visible) == 0 {
		b.WriteString(ui.ItemStyle.Render(EmptyMessage))
		return l.wrapInPanel(b.String())
	}

	visibleHeight := max(1, l.Height-3)
	startIdx := 0
	if l.Cursor >= visibleHeight {
		startIdx = l.Cursor - visibleHeight + 1
	}
	endIdx := min(startIdx+visibleHeight, len(l.visible))

	if startIdx > 0 {
		b.WriteString(ui.MutedStyle.Render("  ↑ more"))
		b.WriteString("\n")
	}

	for i := startIdx; i < endIdx; i++ {
		b.WriteString(l.renderItem(l.visible[i], i == l.Cursor))
		if i < endIdx-1 {
			b.WriteString("\n")
		}
	}

	if endIdx < len(l.visible) {
		b.WriteString("\n")
		b.WriteString(ui.MutedStyle.Render("  ↓ more"))
	}

	if len(l.visible) > visibleHeight {
		position := fmt.Sprintf(" %d/%d ", l.Cursor+1, len(l.visible))
		b.WriteString("\n")
		b.WriteString(ui.MutedStyle.Render(strings.Repeat(" ", max(0, (l.Width-len(position)-4)/2)) + position))
	}

	return l.wrapInPanel(b.String())
}

// renderItem renders one row: verdict, name, icon, version tag, path
func (l *AppList) renderItem(app *models.DetectedApplication, isCursor bool) string {
	verdict := ui.RenderVerdict(app.Resolved())
	if verdict == "" {
		verdict = " "
	}

	name := app.Name
	maxNameLen := l.Width / 3
	if maxNameLen < 10 {
		maxNameLen = 10
	}
	if r := []rune(name); len(r) > maxNameLen {
		name = string(r[:maxNameLen-3]) + "..."
	}

	parts := []string{verdict, ui.AppNameStyle.Render(name), app.Category.Icon()}
	if app.HasVersion() {
		parts = append(parts, ui.RuntimeTagStyle.Render("Electron "+app.RuntimeVersion))
	}
	parts = append(parts, ui.PathStyle.Render(app.InstallPath))
	content := strings.Join(parts, " ")

	if isCursor && l.Focused {
		return ui.SelectedItemStyle.Width(max(0, l.Width-4)).Render(content)
	}
	return ui.ItemStyle.Render(content)
}

// wrapInPanel wraps content in a panel border
func (l *AppList) wrapInPanel(content string) string {
	style := ui.PanelStyle
	if l.Focused {
		style = ui.ActivePanelStyle
	}
	return style.Width(l.Width).Height(l.Height).Render(content)
}
