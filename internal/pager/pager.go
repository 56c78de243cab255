// Package pager keeps the window of reviews the user is looking at and moves
// it through the collection one server page at a time.
package pager

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hay-kot/bookreview/internal/api"
	"github.com/hay-kot/bookreview/internal/core/logging"
	"github.com/hay-kot/bookreview/internal/core/review"
	"github.com/hay-kot/bookreview/internal/core/validate"
)

// DefaultPageSize is used when a Pager is created with a page size below 1.
const DefaultPageSize = 10

// ErrStale is returned by Apply for a result whose offset is no longer the
// one the user asked for. The result is dropped.
var ErrStale = errors.New("stale page result")

// OutOfRangeError reports that the requested offset lies past the end of
// the collection. Clamped is the offset of the nearest valid page when
// TotalKnown is set, and only the page before Requested otherwise.
type OutOfRangeError struct {
	Requested  int
	Clamped    int
	TotalKnown bool
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("offset %d is past the end of the collection, nearest page starts at %d", e.Requested, e.Clamped)
}

// Source is where reviews come from.
type Source interface {
	ListReviews(ctx context.Context, offset, limit int) (api.ReviewPage, error)
	CreateReview(ctx context.Context, draft review.Draft) (review.Review, error)
}

// Session reports whether requests can be authenticated.
type Session interface {
	IsAuthenticated(ctx context.Context) bool
}

// Pager owns the current Window. Loads are split in three steps so an event
// loop can run the network part off its own goroutine: Begin records the
// offset the user wants, Request.Do performs the fetch, and Apply installs
// the result unless a newer Begin superseded it.
type Pager struct {
	src      Source
	session  Session
	pageSize int
	log      zerolog.Logger

	mu         sync.Mutex
	window     Window
	desired    int
	total      int
	totalKnown bool
}

// New creates a pager.
func New(src Source, session Session, pageSize int) *Pager {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Pager{
		src:      src,
		session:  session,
		pageSize: pageSize,
		log:      logging.Component("pager"),
		window:   Window{PageSize: pageSize, Items: []review.Review{}},
	}
}

// PageSize returns the fixed page size.
func (p *Pager) PageSize() int {
	return p.pageSize
}

// Window returns a copy of the current window.
func (p *Pager) Window() Window {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.copyWindowLocked()
}

func (p *Pager) copyWindowLocked() Window {
	w := p.window
	w.Items = append([]review.Review(nil), p.window.Items...)
	return w
}

// Reset forgets the window, as after a sign out.
func (p *Pager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.window = Window{PageSize: p.pageSize, Items: []review.Review{}}
	p.desired = 0
	p.total = 0
	p.totalKnown = false
}

// Request is a pending page fetch created by Begin.
type Request struct {
	Offset int
	Limit  int
	src    Source
}

// Result is the outcome of Request.Do.
type Result struct {
	Offset int
	Page   api.ReviewPage
	Err    error
}

// Do fetches the page. It touches no pager state and may run on any
// goroutine.
func (r Request) Do(ctx context.Context) Result {
	page, err := r.src.ListReviews(ctx, r.Offset, r.Limit)
	return Result{Offset: r.Offset, Page: page, Err: err}
}

// clampLocked moves offset onto a page boundary inside the known
// collection. Callers must hold p.mu.
func (p *Pager) clampLocked(offset int) int {
	if offset < 0 {
		offset = 0
	}
	offset -= offset % p.pageSize

	if p.totalKnown && offset >= p.total {
		offset = p.lastPageOffset(p.total)
	}
	return offset
}

func (p *Pager) lastPageOffset(total int) int {
	if total <= 0 {
		return 0
	}
	return ((total - 1) / p.pageSize) * p.pageSize
}

// Begin starts loading the page at offset. Without a session it fails with
// api.ErrAuthRequired and nothing is sent.
func (p *Pager) Begin(ctx context.Context, offset int) (Request, error) {
	if !p.session.IsAuthenticated(ctx) {
		return Request{}, api.ErrAuthRequired
	}

	p.mu.Lock()
	clamped := p.clampLocked(offset)
	p.desired = clamped
	p.mu.Unlock()

	if clamped != offset {
		p.log.Debug().Int("requested", offset).Int("offset", clamped).Msg("offset clamped")
	}

	return Request{Offset: clamped, Limit: p.pageSize, src: p.src}, nil
}

// BeginNext starts loading the following page. ok is false when there is
// no next page, in which case nothing happens.
func (p *Pager) BeginNext(ctx context.Context) (req Request, ok bool, err error) {
	p.mu.Lock()
	hasNext := p.window.HasNext
	target := p.window.Offset + p.pageSize
	p.mu.Unlock()

	if !hasNext {
		return Request{}, false, nil
	}
	req, err = p.Begin(ctx, target)
	return req, err == nil, err
}

// BeginPrevious starts loading the preceding page. ok is false when there
// is no previous page, in which case nothing happens.
func (p *Pager) BeginPrevious(ctx context.Context) (req Request, ok bool, err error) {
	p.mu.Lock()
	hasPrevious := p.window.HasPrevious
	target := p.window.Offset - p.pageSize
	p.mu.Unlock()

	if !hasPrevious {
		return Request{}, false, nil
	}
	req, err = p.Begin(ctx, target)
	return req, err == nil, err
}

// Apply installs a fetched page. It returns ErrStale when a later Begin
// asked for a different offset, the fetch error when the fetch failed, and
// *OutOfRangeError when the page lies past the end of the collection. In
// every error case the current window is left as it was.
func (p *Pager) Apply(res Result) (Window, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if res.Offset != p.desired {
		return p.copyWindowLocked(), ErrStale
	}
	if res.Err != nil {
		return p.copyWindowLocked(), res.Err
	}

	page := res.Page
	items := page.Reviews

	if page.TotalKnown {
		p.total = page.TotalCount
		p.totalKnown = true
	}

	if len(items) == 0 && res.Offset > 0 {
		var clamped int
		if page.TotalKnown {
			clamped = p.lastPageOffset(page.TotalCount)
		} else {
			clamped = max(0, res.Offset-p.pageSize)
		}
		if clamped != res.Offset {
			p.desired = clamped
			return p.copyWindowLocked(), &OutOfRangeError{Requested: res.Offset, Clamped: clamped, TotalKnown: page.TotalKnown}
		}
	}

	// Servers that ignore the limit parameter send more than a page.
	overflow := len(items) > p.pageSize
	if overflow {
		items = items[:p.pageSize]
	}

	w := Window{
		Offset:      res.Offset,
		PageSize:    p.pageSize,
		Items:       append([]review.Review{}, items...),
		HasPrevious: res.Offset > 0,
		TotalKnown:  page.TotalKnown,
	}

	if page.TotalKnown {
		w.TotalCount = page.TotalCount
		w.HasNext = res.Offset+p.pageSize < page.TotalCount
	} else {
		w.TotalCount = res.Offset + len(items)
		w.HasNext = overflow || len(items) == p.pageSize
	}

	p.window = w
	return p.copyWindowLocked(), nil
}

// maxReissues bounds how often Finish chases the end of a collection that
// keeps shrinking under it.
const maxReissues = 3

// Finish runs req and applies the result. A page past the end of the
// collection is replaced by the last page: taken from the total when the
// server reports one, found by bisection when it does not.
func (p *Pager) Finish(ctx context.Context, req Request) (Window, error) {
	w, err := p.Apply(req.Do(ctx))

	for range maxReissues {
		var oor *OutOfRangeError
		if !errors.As(err, &oor) {
			return w, err
		}
		p.log.Debug().Int("requested", oor.Requested).Int("offset", oor.Clamped).Msg("reissuing out of range page")

		if oor.TotalKnown {
			req.Offset = oor.Clamped
			w, err = p.Apply(req.Do(ctx))
			continue
		}

		res := p.lastPage(ctx, req, oor.Requested)
		if res.Err != nil {
			return p.Apply(Result{Offset: oor.Clamped, Err: res.Err})
		}
		if !p.retarget(oor.Clamped, res.Offset) {
			return p.Window(), ErrStale
		}
		w, err = p.Apply(res)
	}

	return w, err
}

// lastPage bisects the pages below the empty page at end and returns the
// highest one holding reviews, or the first page when none do.
func (p *Pager) lastPage(ctx context.Context, req Request, end int) Result {
	lo, hi := 0, end/p.pageSize
	var found *Result

	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		req.Offset = mid * p.pageSize
		res := req.Do(ctx)
		if res.Err != nil {
			return res
		}
		if len(res.Page.Reviews) == 0 {
			hi = mid
			continue
		}
		lo, found = mid, &res
		if len(res.Page.Reviews) < p.pageSize {
			break
		}
	}

	if found != nil {
		return *found
	}
	req.Offset = lo * p.pageSize
	return req.Do(ctx)
}

// retarget moves the desired offset from one page to another unless a newer
// Begin already replaced it.
func (p *Pager) retarget(from, to int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.desired != from {
		return false
	}
	p.desired = to
	return true
}

// LoadPage replaces the window with the page at offset.
func (p *Pager) LoadPage(ctx context.Context, offset int) (Window, error) {
	req, err := p.Begin(ctx, offset)
	if err != nil {
		return p.Window(), err
	}
	return p.Finish(ctx, req)
}

// NextPage moves one page forward. It is a no-op without a next page.
func (p *Pager) NextPage(ctx context.Context) (Window, error) {
	req, ok, err := p.BeginNext(ctx)
	if !ok {
		return p.Window(), err
	}
	return p.Finish(ctx, req)
}

// PreviousPage moves one page back. It is a no-op without a previous page.
func (p *Pager) PreviousPage(ctx context.Context) (Window, error) {
	req, ok, err := p.BeginPrevious(ctx)
	if !ok {
		return p.Window(), err
	}
	return p.Finish(ctx, req)
}

// Submit validates and posts draft, then puts the created review at the
// top of the window. The collection is not refetched.
func (p *Pager) Submit(ctx context.Context, draft review.Draft) (review.Review, Window, error) {
	if !p.session.IsAuthenticated(ctx) {
		return review.Review{}, p.Window(), api.ErrAuthRequired
	}

	draft = draft.Normalize()
	if err := validate.Draft(draft); err != nil {
		return review.Review{}, p.Window(), err
	}

	created, err := p.src.CreateReview(ctx, draft)
	if err != nil {
		return review.Review{}, p.Window(), err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	w := p.window
	items := make([]review.Review, 0, len(w.Items)+1)
	items = append(items, created)
	items = append(items, w.Items...)

	trimmed := len(items) > p.pageSize
	if trimmed {
		items = items[:p.pageSize]
	}

	w.Items = items
	w.PageSize = p.pageSize
	w.TotalCount++
	if w.TotalKnown {
		w.HasNext = w.Offset+p.pageSize < w.TotalCount
	} else {
		w.HasNext = w.HasNext || trimmed
	}
	if p.totalKnown {
		p.total++
	}

	p.window = w
	p.log.Debug().Str("id", created.ID).Int("total", w.TotalCount).Msg("review added")

	return created, p.copyWindowLocked(), nil
}
