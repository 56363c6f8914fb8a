// Package coordinator turns a batch of candidate files into an updated,
// ordered image list. Each file is validated, uploaded through a one-time
// destination, or kept as a local preview when the remote side fails.
package coordinator

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/authority"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/ephemeral"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/gallery"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/notify"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/policy"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/transfer"
)

const meterName = "github.com/dmitrijs2005/shopkeeper/internal/upload/coordinator"

// DestinationIssuer hands out single-use upload destinations.
type DestinationIssuer interface {
	RequestDestination(ctx context.Context) (authority.Destination, error)
}

// Transferrer writes bytes to a destination and returns the durable reference.
type Transferrer interface {
	Transfer(ctx context.Context, destination string, data []byte, mediaType string) (gallery.Reference, error)
}

type Coordinator struct {
	policy      policy.Policy
	issuer      DestinationIssuer
	transfer    Transferrer
	fallback    ephemeral.Store
	notifier    notify.Notifier
	logger      logging.Logger
	concurrency int

	persisted metric.Int64Counter
	fellBack  metric.Int64Counter
	rejected  metric.Int64Counter
}

type Option func(*Coordinator)

// WithConcurrency bounds how many files are processed at once. Values below
// one mean sequential processing.
func WithConcurrency(n int) Option {
	return func(c *Coordinator) {
		if n < 1 {
			n = 1
		}
		c.concurrency = n
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Coordinator) { c.initMetrics(mp) }
}

func New(p policy.Policy, issuer DestinationIssuer, tr Transferrer, fallback ephemeral.Store, n notify.Notifier, opts ...Option) *Coordinator {
	c := &Coordinator{
		policy:      p,
		issuer:      issuer,
		transfer:    tr,
		fallback:    fallback,
		notifier:    n,
		logger:      logging.Discard(),
		concurrency: 1,
	}
	c.initMetrics(otel.GetMeterProvider())
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = notify.Discard
	}
	c.logger = c.logger.With("module", "coordinator")
	return c
}

func (c *Coordinator) initMetrics(mp metric.MeterProvider) {
	m := mp.Meter(meterName)
	fallback := noop.Int64Counter{}

	counter := func(name, desc string) metric.Int64Counter {
		ctr, err := m.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit("{file}"))
		if err != nil {
			return fallback
		}
		return ctr
	}
	c.persisted = counter("shopkeeper.upload.persisted", "Files stored durably")
	c.fellBack = counter("shopkeeper.upload.fallback", "Files kept as local previews after a remote failure")
	c.rejected = counter("shopkeeper.upload.rejected", "Files left out of the gallery")
}

// SubmitBatch processes candidates against current and returns the new list.
//
// When the batch does not fit into maxAllowed the call fails up front with a
// *TooManyFilesError and current is returned untouched. Otherwise every
// candidate ends up either in the returned list (persisted or as a local
// preview), or in the report's warnings. The entries are appended in input
// order regardless of the order in which uploads finish.
//
// In-flight uploads are not cancelled when ctx is.
func (c *Coordinator) SubmitBatch(ctx context.Context, candidates []gallery.Candidate, current gallery.List, maxAllowed int) (updated gallery.List, report BatchReport, err error) {
	remaining := maxAllowed - len(current)
	if remaining < 0 {
		remaining = 0
	}
	if len(candidates) > remaining {
		c.logger.Info(ctx, "batch rejected", "files", len(candidates), "remaining", remaining)
		c.notify(ctx, notify.Event{
			Severity: notify.SeverityWarning,
			Title:    "Too many files",
			Message:  fmt.Sprintf("You can add %d more image(s) to this listing, %d selected", remaining, len(candidates)),
		})
		return current, BatchReport{}, &TooManyFilesError{Remaining: remaining}
	}

	outcomes := make([]Outcome, len(candidates))

	defer func() {
		if r := recover(); r != nil {
			updated, report, err = c.abort(ctx, current, outcomes, &panicError{value: r})
		}
	}()

	runCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, cand := range candidates {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &panicError{value: r}
				}
			}()
			outcomes[i] = c.process(runCtx, i, cand)
			return nil
		})
	}
	if werr := g.Wait(); werr != nil {
		return c.abort(ctx, current, outcomes, werr)
	}

	accepted := make([]gallery.Reference, 0, len(candidates))
	report.Outcomes = outcomes
	for _, o := range outcomes {
		switch o.State {
		case StatePersisted:
			report.AcceptedCount++
			accepted = append(accepted, o.Reference)
		case StateFallback:
			report.FallbackCount++
			accepted = append(accepted, o.Reference)
			report.Warnings = append(report.Warnings, Warning{Filename: o.Filename, Reason: o.Reason, Detail: o.Detail, Fallback: true})
		default:
			report.Warnings = append(report.Warnings, Warning{Filename: o.Filename, Reason: o.Reason, Detail: o.Detail})
		}
	}

	updated = gallery.Append(current, accepted...)

	for _, w := range report.Warnings {
		c.notify(ctx, warningEvent(w))
	}
	c.record(ctx, report)

	c.logger.Info(ctx, "batch complete",
		"files", len(candidates),
		"persisted", report.AcceptedCount,
		"fallback", report.FallbackCount,
		"rejected", report.RejectedCount(),
	)
	return updated, report, nil
}

func (c *Coordinator) process(ctx context.Context, index int, cand gallery.Candidate) Outcome {
	o := Outcome{Index: index, Filename: cand.Name, State: StatePending}

	if v := c.policy.Validate(cand); !v.Accepted {
		o.State = StateRejected
		o.Reason = v.Reason
		o.Detail = v.Detail
		c.logger.Debug(ctx, "file rejected", "file", cand.Name, "reason", v.Reason)
		return o
	}

	o.State = StateTransferring

	dest, err := c.issuer.RequestDestination(ctx)
	if err != nil {
		return c.fallBack(ctx, o, cand, ReasonAuthorityUnavailable, err)
	}

	ref, err := c.transfer.Transfer(ctx, dest.URL, cand.Data, cand.MediaType)
	if errors.Is(err, transfer.ErrInvalidDestination) {
		return c.fallBack(ctx, o, cand, ReasonInvalidDestination, err)
	}
	if err != nil {
		return c.fallBack(ctx, o, cand, ReasonTransferFailed, err)
	}

	o.State = StatePersisted
	o.Reference = gallery.Persistent(ref.Locator)
	c.logger.Debug(ctx, "file persisted", "file", cand.Name, "key", dest.Key)
	return o
}

func (c *Coordinator) fallBack(ctx context.Context, o Outcome, cand gallery.Candidate, reason policy.Reason, cause error) Outcome {
	c.logger.Warn(ctx, "upload failed, using local preview", "file", cand.Name, "reason", reason, "error", cause)

	loc, err := c.fallback.Put(ctx, ephemeral.Object{Name: cand.Name, MediaType: cand.MediaType, Data: cand.Data})
	if err != nil {
		c.logger.Error(ctx, "local preview failed", "file", cand.Name, "error", err)
		o.State = StateExcluded
		o.Reason = ReasonFallbackUnavailable
		o.Detail = fmt.Sprintf("%s could not be uploaded (%v) and no local copy could be kept", cand.Name, cause)
		return o
	}

	o.State = StateFallback
	o.Reason = reason
	o.Detail = fmt.Sprintf("%s could not be uploaded (%v)", cand.Name, cause)
	o.Reference = gallery.Ephemeral(loc)
	return o
}

// abort undoes local side effects of a failed batch and reports it once.
func (c *Coordinator) abort(ctx context.Context, current gallery.List, outcomes []Outcome, cause error) (gallery.List, BatchReport, error) {
	for _, o := range outcomes {
		if o.State == StateFallback {
			if err := c.fallback.Release(ctx, o.Reference.Locator); err != nil {
				c.logger.Warn(ctx, "release local preview", "locator", o.Reference.Locator, "error", err)
			}
		}
	}
	c.logger.Error(ctx, "batch failed", "error", cause)
	c.notify(ctx, notify.Event{
		Severity: notify.SeverityError,
		Title:    "Upload failed",
		Message:  "Something went wrong while adding images. Nothing was changed.",
	})
	return current, BatchReport{}, fmt.Errorf("%w: %v", ErrBatchFailed, cause)
}

// notify delivers e and contains a panicking notifier so that delivery cannot
// change the outcome of a batch that has already resolved.
func (c *Coordinator) notify(ctx context.Context, e notify.Event) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error(ctx, "notifier panicked", "title", e.Title, "panic", r)
		}
	}()
	c.notifier.Notify(ctx, e)
}

func (c *Coordinator) record(ctx context.Context, r BatchReport) {
	if r.AcceptedCount > 0 {
		c.persisted.Add(ctx, int64(r.AcceptedCount))
	}
	if r.FallbackCount > 0 {
		c.fellBack.Add(ctx, int64(r.FallbackCount))
	}
	if n := r.RejectedCount(); n > 0 {
		c.rejected.Add(ctx, int64(n))
	}
}

func warningEvent(w Warning) notify.Event {
	switch {
	case w.Fallback:
		return notify.Event{
			Severity: notify.SeverityWarning,
			Title:    "Kept as local preview",
			Message:  w.Detail + "; it is shown from a local copy and will not be saved",
		}
	case w.Reason == ReasonFallbackUnavailable:
		return notify.Event{Severity: notify.SeverityError, Title: "File skipped", Message: w.Detail}
	default:
		return notify.Event{Severity: notify.SeverityWarning, Title: "File rejected", Message: w.Detail}
	}
}
