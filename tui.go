package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ChestnutLUO/chromium-certificate/internal/models"
	"github.com/ChestnutLUO/chromium-certificate/internal/report"
	"github.com/ChestnutLUO/chromium-certificate/internal/reveal"
	"github.com/ChestnutLUO/chromium-certificate/internal/scanner"
	"github.com/ChestnutLUO/chromium-certificate/internal/ui"
	"github.com/ChestnutLUO/chromium-certificate/internal/ui/components"
	"github.com/ChestnutLUO/chromium-certificate/internal/watch"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// Screen represents different screens in the app
type Screen int

const (
	ScreenScanning Screen = iota
	ScreenMain
	ScreenDetail
	ScreenHelp
)

const (
	footnoteTitle = "About the Electron performance issue"
	footnoteBody1 = "Some Electron releases override a private macOS window API, which makes the window server " +
		"spend extra GPU time and slows down the whole system while those apps are open."
	footnoteBody2 = "Electron 36.9.2, 37.6.0, 38.2.0, 39.0.0 and later carry the fix. " +
		"Apps marked ✗ should be updated, or quit when not in use."
)

// Model is the interactive results view
type Model struct {
	scanner *scanner.Scanner
	logger  *zap.Logger
	apps    []*models.DetectedApplication

	// UI Components
	appList *components.AppList
	detail  *components.DetailView
	spinner spinner.Model
	help    help.Model
	helpVP  viewport.Model
	keys    ui.KeyMap

	// State
	screen   Screen
	scanning bool
	rescan   bool // A change arrived while scanning
	status   string
	width    int
	height   int

	// Watch mode
	changes <-chan struct{}
	cancel  context.CancelFunc
}

// Messages
type scanCompleteMsg struct {
	apps     []*models.DetectedApplication
	duration time.Duration
}

type dirChangedMsg struct{}

type revealDoneMsg struct {
	name string
	err  error
}

// NewModel creates the TUI model. A non-nil watcher enables automatic rescans.
func NewModel(s *scanner.Scanner, watcher *watch.DirWatcher, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.ProgressStyle

	m := &Model{
		scanner:  s,
		logger:   logger,
		appList:  components.NewAppList(nil),
		detail:   components.NewDetailView(),
		spinner:  sp,
		help:     help.New(),
		keys:     ui.DefaultKeyMap(),
		screen:   ScreenScanning,
		scanning: true,
		status:   "Scanning " + s.Dir(),
		width:    80,
		height:   24,
	}

	if watcher != nil {
		ctx, cancel := context.WithCancel(context.Background())
		m.changes = watcher.Start(ctx)
		m.cancel = cancel
	}

	m.updatePanelSizes()
	return m
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.scanApps}
	if m.changes != nil {
		cmds = append(cmds, m.waitForChange)
	}
	return tea.Batch(cmds...)
}

// scanApps runs one scan off the render loop
func (m *Model) scanApps() tea.Msg {
	start := time.Now()
	apps := m.scanner.Scan()
	return scanCompleteMsg{apps: apps, duration: time.Since(start)}
}

// waitForChange blocks until the watcher reports a settled change
func (m *Model) waitForChange() tea.Msg {
	if _, ok := <-m.changes; !ok {
		return nil
	}
	return dirChangedMsg{}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updatePanelSizes()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		if m.screen == ScreenDetail {
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
		return m, nil

	case spinner.TickMsg:
		if !m.scanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case scanCompleteMsg:
		m.scanning = false
		m.apps = msg.apps
		m.appList.SetApps(m.apps)
		m.updatePanelSizes()
		if m.screen == ScreenScanning {
			m.screen = ScreenMain
		}
		m.status = fmt.Sprintf("✓ Scanned %s in %s", m.scanner.Dir(), msg.duration.Round(time.Millisecond))
		if m.screen == ScreenDetail {
			m.refreshDetail()
		}
		m.logger.Debug("TUI scan finished", zap.Int("count", len(m.apps)), zap.Duration("duration", msg.duration))
		if m.rescan {
			m.rescan = false
			return m, m.startScan()
		}
		return m, nil

	case dirChangedMsg:
		m.logger.Debug("Applications directory changed")
		if m.scanning {
			m.rescan = true
			return m, m.waitForChange
		}
		return m, tea.Batch(m.startScan(), m.waitForChange)

	case revealDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: could not reveal %s: %v", msg.name, msg.err)
			m.logger.Warn("Reveal failed", zap.String("app", msg.name), zap.Error(msg.err))
		} else {
			m.status = "✓ Revealed " + msg.name + " in Finder"
		}
		return m, nil
	}

	return m, nil
}

// startScan marks the model busy and schedules a scan
func (m *Model) startScan() tea.Cmd {
	m.scanning = true
	m.status = "Scanning " + m.scanner.Dir()
	return tea.Batch(m.spinner.Tick, m.scanApps)
}

// refreshDetail keeps the detail pane on the same bundle path after a rescan.
// Records are rebuilt every scan, so the path is the only stable handle.
func (m *Model) refreshDetail() {
	if m.detail.App == nil {
		return
	}
	for _, app := range m.apps {
		if app.InstallPath == m.detail.App.InstallPath {
			if err := m.detail.Load(app); err != nil {
				m.status = fmt.Sprintf("Error: %v", err)
				m.screen = ScreenMain
			}
			return
		}
	}
	m.status = m.detail.App.Name + " is no longer installed"
	m.screen = ScreenMain
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, m.quit()
	}

	switch m.screen {
	case ScreenHelp:
		return m.handleHelpKeys(msg)
	case ScreenDetail:
		return m.handleDetailKeys(msg)
	case ScreenScanning:
		if key.Matches(msg, m.keys.Quit) || key.Matches(msg, m.keys.Escape) {
			return m, m.quit()
		}
		return m, nil
	}
	return m.handleMainKeys(msg)
}

func (m *Model) handleMainKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Escape):
		return m, m.quit()

	case key.Matches(msg, m.keys.Up):
		m.appList.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.appList.MoveDown()
	case key.Matches(msg, m.keys.PageUp):
		m.appList.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.appList.PageDown()
	case key.Matches(msg, m.keys.Home):
		m.appList.GoToFirst()
	case key.Matches(msg, m.keys.End):
		m.appList.GoToLast()

	case key.Matches(msg, m.keys.Filter):
		m.appList.CycleFilter()
		m.updatePanelSizes()
		m.status = "Showing " + m.appList.FilterLabel()

	case key.Matches(msg, m.keys.Details):
		return m.handleDetails()

	case key.Matches(msg, m.keys.Reveal):
		return m, m.revealCurrent()

	case key.Matches(msg, m.keys.Rescan):
		if m.scanning {
			return m, nil
		}
		return m, m.startScan()

	case key.Matches(msg, m.keys.Help):
		m.openHelp()
	}

	return m, nil
}

func (m *Model) handleDetails() (tea.Model, tea.Cmd) {
	app := m.appList.Current()
	if app == nil {
		return m, nil
	}
	if err := m.detail.Load(app); err != nil {
		m.status = fmt.Sprintf("Error: %v", err)
		return m, nil
	}
	m.screen = ScreenDetail
	return m, nil
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Details):
		m.screen = ScreenMain
	case key.Matches(msg, m.keys.Up):
		m.detail.ScrollUp()
	case key.Matches(msg, m.keys.Down):
		m.detail.ScrollDown()
	case key.Matches(msg, m.keys.PageUp):
		m.detail.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.detail.PageDown()
	case key.Matches(msg, m.keys.Home):
		m.detail.GoToTop()
	case key.Matches(msg, m.keys.End):
		m.detail.GoToBottom()
	case key.Matches(msg, m.keys.Reveal):
		return m, m.revealCurrent()
	}
	return m, nil
}

func (m *Model) handleHelpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Help):
		m.screen = ScreenMain
	case key.Matches(msg, m.keys.Up):
		m.helpVP.LineUp(1)
	case key.Matches(msg, m.keys.Down):
		m.helpVP.LineDown(1)
	}
	return m, nil
}

// revealCurrent selects the current bundle in Finder
func (m *Model) revealCurrent() tea.Cmd {
	app := m.appList.Current()
	if m.screen == ScreenDetail && m.detail.App != nil {
		app = m.detail.App
	}
	if app == nil {
		return nil
	}
	name, path := app.Name, app.InstallPath
	return func() tea.Msg {
		return revealDoneMsg{name: name, err: reveal.InFileViewer(path)}
	}
}

func (m *Model) quit() tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	return tea.Quit
}

func (m *Model) openHelp() {
	m.helpVP = viewport.New(max(20, m.width-4), max(5, m.height-4))
	m.helpVP.SetContent(m.renderHelpContent())
	m.screen = ScreenHelp
}

func (m *Model) updatePanelSizes() {
	listHeight := m.height - 8
	if scanner.AnyVersioned(m.appList.VisibleApps()) {
		listHeight -= 5
	}
	m.appList.Width = max(30, m.width-4)
	m.appList.Height = max(5, listHeight)
	m.detail.SetSize(max(30, m.width-4), max(8, m.height-4))
}

func (m *Model) View() string {
	switch m.screen {
	case ScreenDetail:
		return ui.AppStyle.Render(m.detail.View() + "\n" + m.renderHelpBar())
	case ScreenHelp:
		return ui.AppStyle.Render(m.helpVP.View())
	}
	return ui.AppStyle.Render(m.renderMain())
}

func (m *Model) renderMain() string {
	var b strings.Builder

	if m.screen == ScreenScanning {
		b.WriteString(ui.HeadlineStyle.Render("Chromium Certificate " + ui.VersionStyle.Render(version)))
		b.WriteString("\n")
		b.WriteString(m.spinner.View() + " Scanning " + m.scanner.Dir() + "...")
		b.WriteString("\n")
		b.WriteString(m.renderHelpBar())
		return b.String()
	}

	b.WriteString(ui.HeadlineStyle.Render(report.Headline(len(m.apps))))
	b.WriteString("\n")

	// The list height depends on whether the footnote is shown
	m.updatePanelSizes()
	b.WriteString(m.appList.View())
	b.WriteString("\n")

	if scanner.AnyVersioned(m.appList.VisibleApps()) {
		b.WriteString(m.renderFootnote())
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())
	return b.String()
}

func (m *Model) renderFootnote() string {
	width := max(30, m.width-6)
	body := lipgloss.NewStyle().Width(width)
	return lipgloss.JoinVertical(lipgloss.Left,
		ui.FootnoteTitleStyle.Render(footnoteTitle),
		ui.FootnoteStyle.Inherit(body).Render(footnoteBody1),
		ui.FootnoteStyle.Inherit(body).Render(footnoteBody2),
	)
}

func (m *Model) renderStatusBar() string {
	styled := ui.MutedStyle.Render(m.status)
	switch {
	case m.scanning:
		styled = m.spinner.View() + " " + ui.RenderNotification("info", m.status)
	case strings.HasPrefix(m.status, "✓"):
		styled = ui.RenderNotification("success", strings.TrimPrefix(m.status, "✓ "))
	case strings.HasPrefix(m.status, "Error"):
		styled = ui.RenderNotification("error", m.status)
	}

	filter := ui.CategoryStyle.Render(m.appList.FilterLabel())
	if m.changes != nil {
		filter += ui.MutedStyle.Render(" watching")
	}
	return ui.StatusBarStyle.Render(filter + "  " + styled)
}

func (m *Model) renderHelpBar() string {
	if m.screen == ScreenDetail {
		items := []string{
			ui.RenderHelpItem("↑/↓", "scroll"),
			ui.RenderHelpItem("o", "show in Finder"),
			ui.RenderHelpItem("esc", "back"),
		}
		return ui.StatusBarStyle.Render(strings.Join(items, "  "))
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}

func (m *Model) renderHelpContent() string {
	var b strings.Builder
	b.WriteString(ui.PanelTitleStyle.Render("Keyboard shortcuts"))
	b.WriteString("\n\n")
	b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(ui.PanelTitleStyle.Render("Legend"))
	b.WriteString("\n")
	for _, c := range models.ClassificationOrder() {
		b.WriteString(fmt.Sprintf("  %s  %s\n", c.Icon(), c.DisplayName()))
	}
	b.WriteString(fmt.Sprintf("  %s  Electron version carries the fix\n", ui.RenderVerdict(true, true)))
	b.WriteString(fmt.Sprintf("  %s  Electron version is affected\n", ui.RenderVerdict(false, true)))
	b.WriteString("\n")
	b.WriteString(ui.MutedStyle.Render("esc to close"))
	return b.String()
}
