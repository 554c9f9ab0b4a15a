package ui

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

// Highlighter provides syntax highlighting for structured text
type Highlighter struct {
	style *chroma.Style
}

// NewHighlighter creates a new syntax highlighter
func NewHighlighter() *Highlighter {
	return &Highlighter{
		style: styles.Get("catppuccin-mocha"),
	}
}

// Highlight renders text in the given language ("yaml", "json", ...).
// Unknown languages are returned unchanged.
func (h *Highlighter) Highlight(text, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		return text
	}

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return text
	}

	var result strings.Builder
	for token := iterator(); token != chroma.EOF; token = iterator() {
		style := h.style.Get(token.Type)
		if !style.Colour.IsSet() {
			result.WriteString(token.Value)
			continue
		}

		styled := lipgloss.NewStyle().Foreground(lipgloss.Color(style.Colour.String()))
		if style.Bold == chroma.Yes {
			styled = styled.Bold(true)
		}
		if style.Italic == chroma.Yes {
			styled = styled.Italic(true)
		}

		// Render per line so newlines inside a token survive styling
		lines := strings.Split(token.Value, "\n")
		for i, line := range lines {
			if i > 0 {
				result.WriteString("\n")
			}
			if line != "" {
				result.WriteString(styled.Render(line))
			}
		}
	}

	return result.String()
}
