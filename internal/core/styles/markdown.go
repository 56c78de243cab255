package styles

import (
	"strings"

	"github.com/charmbracelet/glamour"
	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
)

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig

	fg := colorPtr(string(CurrentPalette.Foreground))
	primary := colorPtr(string(CurrentPalette.Primary))
	secondary := colorPtr(string(CurrentPalette.Secondary))
	muted := colorPtr(string(CurrentPalette.Muted))

	cfg.Document.Color = fg
	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = primary
	cfg.H2.Color = primary
	cfg.H3.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted

	cfg.Link.Color = secondary
	cfg.LinkText.Color = secondary

	cfg.Code.Color = secondary
	cfg.CodeBlock.Color = muted

	return cfg
}

// RenderMarkdown renders review text for the TUI using the active theme.
// Rendering failures fall back to the raw text.
func RenderMarkdown(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(GlamourStyle()),
		glamour.WithWordWrap(wrapWidth(width)),
	)
	if err != nil {
		return md
	}
	return render(r, md)
}

// RenderMarkdownStandard renders review text using one of glamour's standard
// styles ("dark", "light", "notty", ...). Used by CLI output where the theme
// palette does not apply.
func RenderMarkdownStandard(md, style string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrapWidth(width)),
	)
	if err != nil {
		return md
	}
	return render(r, md)
}

func render(r *glamour.TermRenderer, md string) string {
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func wrapWidth(width int) int {
	if width <= 0 {
		return 80
	}
	return width
}

func colorPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
