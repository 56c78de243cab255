// Package logging holds zerolog helpers shared across components.
package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component creates a new logger with a component identifier. The logger
// carries ContextHook, so events built with .Ctx(ctx) pick up the request
// fields stored in ctx.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger().Hook(ContextHook{})
}
