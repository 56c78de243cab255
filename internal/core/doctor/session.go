package doctor

import "context"

// SessionState reports whether a session is present.
type SessionState interface {
	IsAuthenticated(ctx context.Context) bool
}

// SessionCheck reports whether a session token is stored.
type SessionCheck struct {
	session SessionState
}

func NewSessionCheck(session SessionState) *SessionCheck {
	return &SessionCheck{session: session}
}

func (c *SessionCheck) Name() string { return "Session" }

func (c *SessionCheck) Run(ctx context.Context) Result {
	r := Result{Name: c.Name()}
	if c.session.IsAuthenticated(ctx) {
		r.pass("signed in", "")
	} else {
		r.warn("signed in", "no session stored, run 'bookreview login'")
	}
	return r
}
