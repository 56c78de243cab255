package tui

import (
	"github.com/hay-kot/bookreview/internal/core/review"
	"github.com/hay-kot/bookreview/internal/pager"
)

// authDoneMsg reports the outcome of a sign-in or registration.
type authDoneMsg struct {
	register bool
	err      error
}

// pageLoadedMsg carries the outcome of a page load started with Begin.
type pageLoadedMsg struct {
	offset int
	window pager.Window
	err    error
}

// submitDoneMsg carries the outcome of posting a review.
type submitDoneMsg struct {
	created review.Review
	window  pager.Window
	err     error
}
