// Package bookreview wires the client components together.
package bookreview

import (
	"context"
	"net/http"

	"github.com/hay-kot/bookreview/internal/api"
	"github.com/hay-kot/bookreview/internal/core/config"
	"github.com/hay-kot/bookreview/internal/core/kv"
	"github.com/hay-kot/bookreview/internal/core/notify"
	"github.com/hay-kot/bookreview/internal/data/db"
	"github.com/hay-kot/bookreview/internal/pager"
	"github.com/hay-kot/bookreview/internal/session"
)

// App is the central entry point for all client operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Config  *config.Config
	DB      *db.DB
	KV      kv.KV
	History notify.Store

	Client  *api.Client
	Session *session.Manager
	Pager   *pager.Pager
}

// NewApp constructs an App from explicit dependencies. The HTTP client
// routes every request through the session transport so the bearer token
// is attached and a 401 ends the session.
func NewApp(cfg *config.Config, database *db.DB, store kv.KV, history notify.Store) *App {
	hc := &http.Client{Timeout: cfg.API.Timeout}
	client := api.New(api.Config{
		BaseURL:   cfg.API.BaseURL,
		Endpoints: cfg.API.Endpoints,
	}, hc)

	sessions := session.NewManager(client, session.NewKVTokenStore(store, cfg.Session.StorageKey))
	hc.Transport = sessions.Transport(nil)

	return &App{
		Config:  cfg,
		DB:      database,
		KV:      store,
		History: history,
		Client:  client,
		Session: sessions,
		Pager:   pager.New(client, sessions, cfg.Pager.PageSize),
	}
}

// Close waits for background work such as server-side sign out to finish
// or for ctx to end.
func (a *App) Close(ctx context.Context) error {
	return a.Session.Close(ctx)
}
