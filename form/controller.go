// Package form implements the controller behind the BFHL form: it validates
// what the user typed, forwards it to the endpoint, and derives the filtered
// view of the answer.
package form

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/twipi/bfhl/backend"
	"github.com/twipi/bfhl/bfhl"
	"github.com/twipi/bfhl/internal/slogctx"
)

// ErrStale is returned by [Controller.Submit] when a newer submission was
// started before this one finished. Its outcome was discarded.
var ErrStale = errors.New("submission superseded by a newer one")

// State is a snapshot of everything the form shows.
type State struct {
	// Input is the text in the input box: the last submitted text, or what
	// was typed since and carried along by [Controller.SetInput].
	Input string
	// Response is the last successful response, or nil if there was none.
	Response *bfhl.Response
	// Error is the message to show, or empty.
	Error string
	// Selection is the set of ticked filters.
	Selection bfhl.Selection
}

// View returns the projection of the response under the selection. It is nil
// until a submission succeeded.
func (s State) View() *bfhl.View {
	return bfhl.Project(s.Response, s.Selection)
}

// Controller owns the state of one form session. It is safe for concurrent
// use.
type Controller struct {
	processor backend.Processor
	logger    *slog.Logger

	mu    sync.Mutex
	state State
	seq   uint64
}

// NewController creates a new [Controller] sending submissions to processor.
func NewController(processor backend.Processor, logger *slog.Logger) *Controller {
	return &Controller{
		processor: processor,
		logger:    logger,
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit validates raw and, if it passes, sends it to the endpoint. On success
// the response replaces the current one. On any failure the current response
// is kept and the generic error message is set. Invalid input never reaches
// the endpoint.
//
// If another submission starts while this one is waiting on the endpoint, this
// one's outcome is discarded and ErrStale is returned.
func (c *Controller) Submit(ctx context.Context, raw string) (*bfhl.Response, error) {
	logger := slogctx.FromOr(ctx, c.logger)

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state.Input = raw
	c.state.Error = ""
	c.mu.Unlock()

	req, err := bfhl.ParseRequest(raw)
	if err != nil {
		logger.Debug("rejected form input", "err", err)
		submissions.WithLabelValues(outcomeInvalidInput).Inc()
		return nil, c.fail(seq, err)
	}

	resp, err := c.processor.Process(ctx, req)
	if err != nil {
		logger.Error("failed to process form input", "err", err)
		submissions.WithLabelValues(outcomeTransportError).Inc()
		return nil, c.fail(seq, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		logger.Debug(
			"discarding stale response",
			"seq", seq,
			"latest_seq", c.seq)
		submissions.WithLabelValues(outcomeStale).Inc()
		return nil, ErrStale
	}

	c.state.Response = resp
	c.state.Error = ""
	submissions.WithLabelValues(outcomeOK).Inc()
	return resp, nil
}

func (c *Controller) fail(seq uint64, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		return ErrStale
	}

	c.state.Error = bfhl.GenericErrorMessage
	return err
}

// ToggleFilter flips label in the selection and returns the new selection.
// Unknown labels leave it unchanged.
func (c *Controller) ToggleFilter(label bfhl.Label) bfhl.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Selection = c.state.Selection.Toggle(label)
	return c.state.Selection
}

// SetInput replaces the text shown in the input box without submitting it.
func (c *Controller) SetInput(raw string) {
	c.mu.Lock()
	c.state.Input = raw
	c.mu.Unlock()
}

// SetSelection replaces the selection.
func (c *Controller) SetSelection(sel bfhl.Selection) {
	c.mu.Lock()
	c.state.Selection = sel
	c.mu.Unlock()
}

// View returns the current projection. It is nil until a submission
// succeeded.
func (c *Controller) View() *bfhl.View {
	return c.State().View()
}
