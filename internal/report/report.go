// Package report renders scan results for non-interactive output.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ChestnutLUO/chromium-certificate/internal/models"
	"github.com/ChestnutLUO/chromium-certificate/internal/scanner"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

// Format selects how results are written
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("unsupported output format %q (want table, json or yaml)", s)
}

// Inventory is the machine-readable envelope for a scan
type Inventory struct {
	Total        int                           `json:"total" yaml:"total"`
	Applications []*models.DetectedApplication `json:"applications" yaml:"applications"`
}

// Group is one classification bucket in grouped output
type Group struct {
	Category     models.Classification         `json:"category" yaml:"category"`
	Name         string                        `json:"name" yaml:"name"`
	Count        int                           `json:"count" yaml:"count"`
	Applications []*models.DetectedApplication `json:"applications" yaml:"applications"`
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	fixedStyle  = cellStyle.Foreground(lipgloss.Color("#10B981"))
	brokenStyle = cellStyle.Foreground(lipgloss.Color("#EF4444"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#374151"))
)

// Render writes the full result list
func Render(w io.Writer, apps []*models.DetectedApplication, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, Inventory{Total: len(apps), Applications: nonNil(apps)})
	case FormatYAML:
		return WriteYAML(w, Inventory{Total: len(apps), Applications: nonNil(apps)})
	}

	if len(apps) == 0 {
		_, err := fmt.Fprintln(w, "No Chromium-based apps found")
		return err
	}

	_, err := fmt.Fprintln(w, appTable(apps).String())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, Headline(len(apps)))
	return err
}

// RenderGroups writes apps bucketed by classification in priority order
func RenderGroups(w io.Writer, apps []*models.DetectedApplication, format Format) error {
	grouped := scanner.Group(apps)
	groups := make([]Group, 0, len(grouped))
	for _, c := range models.ClassificationOrder() {
		groups = append(groups, Group{
			Category:     c,
			Name:         c.DisplayName(),
			Count:        len(grouped[c]),
			Applications: grouped[c],
		})
	}

	switch format {
	case FormatJSON:
		return WriteJSON(w, groups)
	case FormatYAML:
		return WriteYAML(w, groups)
	}

	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s (%d)\n", g.Category.Icon(), g.Name, g.Count)
		for _, app := range g.Applications {
			fmt.Fprintf(w, "  %s\n", describe(app))
		}
	}
	return nil
}

// RenderNames writes one name per line
func RenderNames(w io.Writer, names []string, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, nonNilStrings(names))
	case FormatYAML:
		return WriteYAML(w, nonNilStrings(names))
	}

	for _, name := range names {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

// RenderCount writes the number of detected apps
func RenderCount(w io.Writer, count int, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, map[string]int{"total": count})
	case FormatYAML:
		return WriteYAML(w, map[string]int{"total": count})
	}
	_, err := fmt.Fprintln(w, count)
	return err
}

// Headline summarises the count the way the app's main window does
func Headline(count int) string {
	switch count {
	case 0:
		return "No Chromium on this Mac!"
	case 1:
		return "1 Chromium app on this Mac"
	}
	return fmt.Sprintf("%d Chromium apps on this Mac", count)
}

func appTable(apps []*models.DetectedApplication) *table.Table {
	rows := make([][]string, 0, len(apps))
	for _, app := range apps {
		rows = append(rows, []string{
			app.Name,
			app.Category.DisplayName(),
			app.RuntimeVersion,
			app.StatusLabel(),
			app.InstallPath,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("NAME", "TYPE", "ELECTRON", "STATUS", "PATH").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 3 && row >= 0 && row < len(apps) {
				if resolved, ok := apps[row].Resolved(); ok {
					if resolved {
						return fixedStyle
					}
					return brokenStyle
				}
			}
			return cellStyle
		})
}

// describe renders a single-line summary of app
func describe(app *models.DetectedApplication) string {
	var b strings.Builder
	b.WriteString(app.Name)
	if app.HasVersion() {
		fmt.Fprintf(&b, " (Electron %s, %s)", app.RuntimeVersion, app.StatusLabel())
	}
	b.WriteString(" - ")
	b.WriteString(app.InstallPath)
	return b.String()
}

// WriteJSON encodes v as indented JSON
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

// WriteYAML encodes v as YAML with two-space indentation
func WriteYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

func nonNil(apps []*models.DetectedApplication) []*models.DetectedApplication {
	if apps == nil {
		return []*models.DetectedApplication{}
	}
	return apps
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
