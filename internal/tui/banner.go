package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/bookreview/internal/core/notify"
	"github.com/hay-kot/bookreview/internal/core/styles"
)

const (
	defaultBannerTTL   = 5 * time.Second
	bannerTickInterval = 250 * time.Millisecond
)

type bannerTickMsg time.Time

func scheduleBannerTick() tea.Cmd {
	return tea.Tick(bannerTickInterval, func(t time.Time) tea.Msg {
		return bannerTickMsg(t)
	})
}

// BannerController holds the one notification shown above the content.
// A new notification replaces the current one. Info banners expire on
// their own; warnings and errors stay until dismissed.
type BannerController struct {
	current   *notify.Notification
	remaining time.Duration
	ticking   bool
}

func NewBannerController() *BannerController {
	return &BannerController{}
}

// Push replaces the current banner. It returns a tick command when the
// banner expires and no tick is already scheduled.
func (c *BannerController) Push(n notify.Notification) tea.Cmd {
	c.current = &n
	c.remaining = 0
	if n.Level != notify.LevelInfo {
		return nil
	}

	c.remaining = defaultBannerTTL
	if c.ticking {
		return nil
	}
	c.ticking = true
	return scheduleBannerTick()
}

// Tick decrements the remaining TTL by d, clearing an expired banner. It
// returns the next tick command while an expiring banner is still shown.
func (c *BannerController) Tick(d time.Duration) tea.Cmd {
	if c.current == nil || c.remaining <= 0 {
		c.ticking = false
		return nil
	}

	c.remaining -= d
	if c.remaining <= 0 {
		c.current = nil
		c.ticking = false
		return nil
	}
	return scheduleBannerTick()
}

// Dismiss removes the banner.
func (c *BannerController) Dismiss() {
	c.current = nil
	c.remaining = 0
}

// Visible returns true if a banner is shown.
func (c *BannerController) Visible() bool {
	return c.current != nil
}

// Current returns the shown notification, if any.
func (c *BannerController) Current() (notify.Notification, bool) {
	if c.current == nil {
		return notify.Notification{}, false
	}
	return *c.current, true
}

// View renders the banner at the given width, or "" when nothing is shown.
func (c *BannerController) View(width int) string {
	n, ok := c.Current()
	if !ok {
		return ""
	}

	var icon string
	var style lipgloss.Style

	switch n.Level {
	case notify.LevelError:
		icon = styles.IconError
		style = styles.BannerErrorStyle
	case notify.LevelWarning:
		icon = styles.IconWarning
		style = styles.BannerWarningStyle
	default:
		icon = styles.IconInfo
		style = styles.BannerInfoStyle
	}

	content := icon + " " + n.Message
	if n.Level != notify.LevelInfo {
		content += "  (x to dismiss)"
	}
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(content)
}
