package pager

import (
	"fmt"

	"github.com/hay-kot/bookreview/internal/core/review"
)

// Window is the page of reviews currently shown.
type Window struct {
	Offset      int
	PageSize    int
	Items       []review.Review
	HasNext     bool
	HasPrevious bool

	// TotalCount is the collection size. When TotalKnown is false the server
	// did not report it and the value is a lower bound.
	TotalCount int
	TotalKnown bool
}

// Empty reports the "no reviews yet" state: the collection itself is empty,
// not just this page.
func (w Window) Empty() bool {
	return len(w.Items) == 0 && w.TotalCount == 0 && !w.HasNext
}

// Page returns the 1-based page number of the window.
func (w Window) Page() int {
	if w.PageSize <= 0 {
		return 1
	}
	return w.Offset/w.PageSize + 1
}

// Pages returns the number of pages, or 0 when the total is not known.
func (w Window) Pages() int {
	if !w.TotalKnown || w.PageSize <= 0 {
		return 0
	}
	return max(1, (w.TotalCount+w.PageSize-1)/w.PageSize)
}

// Status describes the window position, e.g. "Page 2 of 3 · 25 reviews".
// Without a known total the count is a lower bound and gets a "+" while
// more pages remain.
func (w Window) Status() string {
	if w.TotalKnown {
		noun := "reviews"
		if w.TotalCount == 1 {
			noun = "review"
		}
		return fmt.Sprintf("Page %d of %d · %d %s", w.Page(), w.Pages(), w.TotalCount, noun)
	}

	if w.HasNext {
		return fmt.Sprintf("Page %d · %d+ reviews", w.Page(), w.TotalCount)
	}
	return fmt.Sprintf("Page %d · %d reviews", w.Page(), w.TotalCount)
}
