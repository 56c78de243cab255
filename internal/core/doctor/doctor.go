// Package doctor runs health checks against the local setup and the review
// service.
package doctor

import (
	"context"
	"sync"
	"time"
)

// DefaultCheckTimeout bounds a single check so an unreachable service does
// not hold up the report.
const DefaultCheckTimeout = 10 * time.Second

// Status is the outcome of one line of a check.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// CheckItem is one line of a check.
type CheckItem struct {
	Label  string `json:"label"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Result groups the lines reported by one check.
type Result struct {
	Name  string      `json:"name"`
	Items []CheckItem `json:"items"`
}

func (r *Result) add(status Status, label, detail string) {
	r.Items = append(r.Items, CheckItem{Label: label, Status: status, Detail: detail})
}

func (r *Result) pass(label, detail string) { r.add(StatusPass, label, detail) }
func (r *Result) warn(label, detail string) { r.add(StatusWarn, label, detail) }
func (r *Result) fail(label, detail string) { r.add(StatusFail, label, detail) }

// Check is a single diagnostic.
type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// RunAll runs checks concurrently, each under timeout, and returns the
// results in the order of checks. A non-positive timeout means
// DefaultCheckTimeout.
func RunAll(ctx context.Context, timeout time.Duration, checks []Check) []Result {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}

	results := make([]Result, len(checks))

	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()

			cctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			results[i] = check.Run(cctx)
			if results[i].Name == "" {
				results[i].Name = check.Name()
			}
		}()
	}
	wg.Wait()

	return results
}

// Tally counts result lines by status.
type Tally struct {
	Passed int `json:"passed"`
	Warned int `json:"warned"`
	Failed int `json:"failed"`
}

// Healthy is true when nothing failed. Warnings do not count.
func (t Tally) Healthy() bool {
	return t.Failed == 0
}

// Count tallies every line of results.
func Count(results []Result) Tally {
	var t Tally
	for _, r := range results {
		for _, item := range r.Items {
			switch item.Status {
			case StatusPass:
				t.Passed++
			case StatusWarn:
				t.Warned++
			case StatusFail:
				t.Failed++
			}
		}
	}
	return t
}
