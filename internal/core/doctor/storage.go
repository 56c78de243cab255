package doctor

import (
	"context"
	"database/sql"
	"fmt"
)

// StorageCheck verifies the local SQLite database is reachable and intact.
type StorageCheck struct {
	conn    *sql.DB
	dataDir string
}

func NewStorageCheck(conn *sql.DB, dataDir string) *StorageCheck {
	return &StorageCheck{conn: conn, dataDir: dataDir}
}

func (c *StorageCheck) Name() string { return "Storage" }

func (c *StorageCheck) Run(ctx context.Context) Result {
	r := Result{Name: c.Name()}

	if err := c.conn.PingContext(ctx); err != nil {
		r.fail("database", err.Error())
		return r
	}
	r.pass("database", c.dataDir)

	var verdict string
	switch err := c.conn.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&verdict); {
	case err != nil:
		r.fail("integrity", err.Error())
	case verdict != "ok":
		r.fail("integrity", fmt.Sprintf("%s (remove the database to start fresh)", verdict))
	default:
		r.pass("integrity", "")
	}
	return r
}
