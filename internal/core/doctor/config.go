package doctor

import (
	"context"
	"os"

	"github.com/hay-kot/bookreview/internal/core/config"
)

// ConfigCheck reports where configuration came from and the service it
// points at.
type ConfigCheck struct {
	path string
	cfg  *config.Config
}

func NewConfigCheck(path string, cfg *config.Config) *ConfigCheck {
	return &ConfigCheck{path: path, cfg: cfg}
}

func (c *ConfigCheck) Name() string { return "Configuration" }

func (c *ConfigCheck) Run(_ context.Context) Result {
	r := Result{Name: c.Name()}

	if _, err := os.Stat(c.path); err != nil {
		r.warn("config file", c.path+" not found, using defaults")
	} else {
		r.pass("config file", c.path)
	}

	if err := c.cfg.Validate(); err != nil {
		r.fail("settings", err.Error())
		return r
	}
	r.pass("service", c.cfg.API.BaseURL)

	if c.cfg.API.Endpoints.Logout == "" {
		r.pass("logout endpoint", "not set, sign out is local only")
	}
	return r
}
