package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
)

// MaxPageSize is the largest page the client will request.
const MaxPageSize = 100

// Validate checks that the configuration is valid. Every invalid key is
// reported, not just the first.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	return criterio.ValidateStruct(
		criterio.Run("api.base_url", c.API.BaseURL, isBaseURL),
		criterio.Run("api.timeout", c.API.Timeout, isPositiveDuration),
		criterio.Run("api.endpoints.signin", c.API.Endpoints.SignIn, isEndpointPath),
		criterio.Run("api.endpoints.register", c.API.Endpoints.Register, isEndpointPath),
		criterio.Run("api.endpoints.books", c.API.Endpoints.Books, isEndpointPath),
		criterio.Run("api.endpoints.logout", c.API.Endpoints.Logout, isOptionalEndpointPath),
		criterio.Run("pager.page_size", c.Pager.PageSize, isPageSize),
		criterio.Run("session.storage_key", c.Session.StorageKey, isNonBlank),
		criterio.Run("tui.theme", c.TUI.Theme, isTheme),
		criterio.Run("demo.seed", c.Demo.Seed, isNonNegative),
		criterio.Run("demo.page_size", c.Demo.PageSize, isPageSize),
	)
}

func isBaseURL(v string) error {
	u, err := url.Parse(v)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must use http or https")
	}
	if u.Host == "" {
		return errors.New("must include a host")
	}
	return nil
}

func isPositiveDuration(d time.Duration) error {
	if d <= 0 {
		return errors.New("must be positive")
	}
	return nil
}

func isEndpointPath(v string) error {
	if !strings.HasPrefix(v, "/") {
		return errors.New("must start with /")
	}
	return nil
}

func isOptionalEndpointPath(v string) error {
	if v == "" {
		return nil
	}
	return isEndpointPath(v)
}

func isPageSize(n int) error {
	if n < 1 || n > MaxPageSize {
		return fmt.Errorf("must be between 1 and %d", MaxPageSize)
	}
	return nil
}

func isNonNegative(n int) error {
	if n < 0 {
		return errors.New("cannot be negative")
	}
	return nil
}

func isNonBlank(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("cannot be empty")
	}
	return nil
}

func isTheme(v string) error {
	switch v {
	case ThemeTokyoNight, ThemeGruvbox:
		return nil
	default:
		return fmt.Errorf("unknown theme %q", v)
	}
}
