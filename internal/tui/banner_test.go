package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/bookreview/internal/core/notify"
	"github.com/hay-kot/bookreview/pkg/tuitest"
)

func TestBannerController_Push(t *testing.T) {
	c := NewBannerController()
	assert.False(t, c.Visible())

	cmd := c.Push(notify.New(notify.LevelInfo, "hello"))

	assert.NotNil(t, cmd, "info banners schedule expiry")
	assert.True(t, c.Visible())
	n, ok := c.Current()
	assert.True(t, ok)
	assert.Equal(t, "hello", n.Message)
	assert.Equal(t, defaultBannerTTL, c.remaining)
}

func TestBannerController_Push_replaces(t *testing.T) {
	c := NewBannerController()
	c.Push(notify.New(notify.LevelInfo, "first"))
	cmd := c.Push(notify.New(notify.LevelInfo, "second"))

	assert.Nil(t, cmd, "tick already running")
	n, _ := c.Current()
	assert.Equal(t, "second", n.Message)
}

func TestBannerController_ErrorsPersist(t *testing.T) {
	c := NewBannerController()
	cmd := c.Push(notify.New(notify.LevelError, "boom"))
	assert.Nil(t, cmd)

	c.Tick(time.Hour)
	assert.True(t, c.Visible())

	c.Dismiss()
	assert.False(t, c.Visible())
}

func TestBannerController_Tick_expires_info(t *testing.T) {
	c := NewBannerController()
	c.Push(notify.New(notify.LevelInfo, "expires"))

	next := c.Tick(time.Second)
	assert.NotNil(t, next)
	assert.Equal(t, defaultBannerTTL-time.Second, c.remaining)

	next = c.Tick(defaultBannerTTL)
	assert.Nil(t, next)
	assert.False(t, c.Visible())
	assert.False(t, c.ticking)
}

func TestBannerController_ErrorReplacingInfoStopsExpiry(t *testing.T) {
	c := NewBannerController()
	c.Push(notify.New(notify.LevelInfo, "saved"))
	c.Push(notify.New(notify.LevelError, "failed"))

	assert.Nil(t, c.Tick(defaultBannerTTL*2))
	assert.True(t, c.Visible())
}

func TestBannerController_View(t *testing.T) {
	c := NewBannerController()
	assert.Empty(t, c.View(80))

	c.Push(notify.New(notify.LevelError, "Could not reach the server"))
	view := tuitest.StripANSI(c.View(80))
	assert.Contains(t, view, "Could not reach the server")
	assert.Contains(t, view, "x to dismiss")

	c.Push(notify.New(notify.LevelInfo, "Review posted"))
	view = tuitest.StripANSI(c.View(0))
	assert.Contains(t, view, "Review posted")
	assert.NotContains(t, view, "dismiss")
}
