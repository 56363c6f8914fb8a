package coordinator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/shopkeeper/internal/upload/authority"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/ephemeral"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/gallery"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/notify"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/policy"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/transfer"
)

const mb = 1024 * 1024

func TestSubmitBatch_MixedBatch(t *testing.T) {
	issuer, issued := sequentialIssuer()
	rec := &notify.Recorder{}
	c := New(policy.Default(), issuer, stripTransfer(), ephemeral.NewMemoryStore(), rec)

	current := gallery.FromLocators([]string{"https://store.test/bucket/old"})
	batch := []gallery.Candidate{
		png("a.png", 2*mb),
		png("b.png", 8*mb),
		{Name: "c.txt", MediaType: "text/plain", Data: []byte("hello")},
	}

	updated, report, err := c.SubmitBatch(context.Background(), batch, current, 10)
	require.NoError(t, err)

	require.Len(t, updated, 2)
	assert.Equal(t, current[0], updated[0])
	assert.Equal(t, gallery.Persistent("https://store.test/bucket/obj-1"), updated[1])
	assert.Len(t, current, 1, "input list must not be modified")

	assert.Equal(t, 1, report.AcceptedCount)
	assert.Equal(t, 0, report.FallbackCount)
	require.Len(t, report.Warnings, 2)
	assert.Equal(t, Warning{Filename: "b.png", Reason: policy.ReasonTooLarge, Detail: report.Warnings[0].Detail}, report.Warnings[0])
	assert.Equal(t, policy.ReasonUnsupportedType, report.Warnings[1].Reason)
	assert.Equal(t, "c.txt", report.Warnings[1].Filename)

	require.Len(t, report.Outcomes, 3)
	assert.Equal(t, StatePersisted, report.Outcomes[0].State)
	assert.Equal(t, StateRejected, report.Outcomes[1].State)
	assert.Equal(t, StateRejected, report.Outcomes[2].State)
	assert.Equal(t, 2, report.RejectedCount())

	assert.Equal(t, int64(1), issued.Load(), "rejected files must not request destinations")
	assert.Len(t, rec.Events(), 2)
}

func TestSubmitBatch_AuthorityDown(t *testing.T) {
	store := ephemeral.NewMemoryStore()
	rec := &notify.Recorder{}
	c := New(policy.Default(), failingIssuer(), stripTransfer(), store, rec)

	updated, report, err := c.SubmitBatch(context.Background(), []gallery.Candidate{png("a.png", 10), png("b.png", 20)}, nil, 10)
	require.NoError(t, err)

	require.Len(t, updated, 2)
	for _, ref := range updated {
		assert.True(t, ref.Ephemeral)
	}
	assert.Equal(t, 0, report.AcceptedCount)
	assert.Equal(t, 2, report.FallbackCount)
	for _, w := range report.Warnings {
		assert.True(t, w.Fallback)
		assert.Equal(t, ReasonAuthorityUnavailable, w.Reason)
	}
	assert.Equal(t, 2, store.Len())

	obj, err := store.Get(context.Background(), updated[1].Locator)
	require.NoError(t, err)
	assert.Equal(t, "b.png", obj.Name)
	assert.Len(t, obj.Data, 20)

	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, notify.SeverityWarning, events[0].Severity)
	assert.Contains(t, events[0].Message, "a.png")
}

func TestSubmitBatch_TooManyFiles(t *testing.T) {
	var calls atomic.Int64
	issuer := issuerFunc(func(ctx context.Context) (authority.Destination, error) {
		calls.Add(1)
		return authority.Destination{}, nil
	})
	rec := &notify.Recorder{}
	c := New(policy.Default(), issuer, stripTransfer(), ephemeral.NewMemoryStore(), rec)

	current := make(gallery.List, 9)
	for i := range current {
		current[i] = gallery.Persistent(fmt.Sprintf("https://store.test/bucket/%d", i))
	}

	updated, report, err := c.SubmitBatch(context.Background(), []gallery.Candidate{png("a.png", 1), png("b.png", 1)}, current, 10)

	require.ErrorIs(t, err, ErrTooManyFiles)
	var tmf *TooManyFilesError
	require.ErrorAs(t, err, &tmf)
	assert.Equal(t, 1, tmf.Remaining)
	assert.Equal(t, current, updated)
	assert.Equal(t, BatchReport{}, report)
	assert.Zero(t, calls.Load())
	assert.Len(t, rec.Events(), 1)
}

func TestSubmitBatch_OverfullGalleryReportsZeroRemaining(t *testing.T) {
	c := New(policy.Default(), failingIssuer(), stripTransfer(), ephemeral.NewMemoryStore(), nil)
	current := gallery.FromLocators([]string{"a", "b", "c"})

	_, _, err := c.SubmitBatch(context.Background(), []gallery.Candidate{png("x.png", 1)}, current, 2)

	var tmf *TooManyFilesError
	require.ErrorAs(t, err, &tmf)
	assert.Equal(t, 0, tmf.Remaining)
}

func TestSubmitBatch_ExactFit(t *testing.T) {
	issuer, _ := sequentialIssuer()
	c := New(policy.Default(), issuer, stripTransfer(), ephemeral.NewMemoryStore(), nil)
	current := gallery.FromLocators([]string{"a", "b"})

	updated, report, err := c.SubmitBatch(context.Background(), []gallery.Candidate{png("x.png", 1), png("y.png", 1)}, current, 4)
	require.NoError(t, err)
	assert.Len(t, updated, 4)
	assert.Equal(t, 2, report.AcceptedCount)
}

func TestSubmitBatch_EmptyBatch(t *testing.T) {
	rec := &notify.Recorder{}
	c := New(policy.Default(), failingIssuer(), stripTransfer(), ephemeral.NewMemoryStore(), rec)
	current := gallery.FromLocators([]string{"a"})

	updated, report, err := c.SubmitBatch(context.Background(), nil, current, 1)
	require.NoError(t, err)
	assert.Equal(t, current, updated)
	assert.Zero(t, report.AcceptedCount)
	assert.Empty(t, rec.Events())
}

func TestSubmitBatch_TransferFailureFallsBack(t *testing.T) {
	issuer, _ := sequentialIssuer()
	tr := transferFunc(func(ctx context.Context, dest string, data []byte, mediaType string) (gallery.Reference, error) {
		if len(data) == 2 {
			return gallery.Reference{}, errors.New("connection reset")
		}
		return stripTransfer().Transfer(ctx, dest, data, mediaType)
	})
	rec := &notify.Recorder{}
	c := New(policy.Default(), issuer, tr, ephemeral.NewMemoryStore(), rec)

	updated, report, err := c.SubmitBatch(context.Background(), []gallery.Candidate{png("a.png", 1), png("b.png", 2), png("c.png", 3)}, nil, 10)
	require.NoError(t, err)

	require.Len(t, updated, 3)
	assert.False(t, updated[0].Ephemeral)
	assert.True(t, updated[1].Ephemeral)
	assert.False(t, updated[2].Ephemeral)
	assert.Equal(t, 2, report.AcceptedCount)
	assert.Equal(t, 1, report.FallbackCount)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, ReasonTransferFailed, report.Warnings[0].Reason)
	assert.Contains(t, report.Warnings[0].Detail, "connection reset")
	assert.Len(t, rec.Events(), 1)
}

func TestSubmitBatch_FallbackUnavailableExcludesFile(t *testing.T) {
	rec := &notify.Recorder{}
	c := New(policy.Default(), failingIssuer(), stripTransfer(), brokenStore{}, rec)

	updated, report, err := c.SubmitBatch(context.Background(), []gallery.Candidate{png("a.png", 1)}, nil, 10)
	require.NoError(t, err)

	assert.Empty(t, updated)
	assert.Zero(t, report.FallbackCount)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, ReasonFallbackUnavailable, report.Warnings[0].Reason)
	assert.False(t, report.Warnings[0].Fallback)
	assert.Equal(t, StateExcluded, report.Outcomes[0].State)

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notify.SeverityError, events[0].Severity)
}

func TestSubmitBatch_PanicReturnsCurrentUnchanged(t *testing.T) {
	store := ephemeral.NewMemoryStore()
	var calls atomic.Int64
	issuer := issuerFunc(func(ctx context.Context) (authority.Destination, error) {
		if calls.Add(1) == 3 {
			panic("boom")
		}
		return authority.Destination{}, errors.New("down")
	})
	rec := &notify.Recorder{}
	c := New(policy.Default(), issuer, stripTransfer(), store, rec)

	current := gallery.FromLocators([]string{"keep"})
	updated, report, err := c.SubmitBatch(context.Background(),
		[]gallery.Candidate{png("a.png", 1), png("b.png", 1), png("c.png", 1)}, current, 10)

	require.ErrorIs(t, err, ErrBatchFailed)
	assert.Equal(t, current, updated)
	assert.Equal(t, BatchReport{}, report)
	assert.Zero(t, store.Len(), "previews from the failed batch must be released")

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notify.SeverityError, events[0].Severity)
}

func TestSubmitBatch_PreservesInputOrderUnderConcurrency(t *testing.T) {
	issuer, _ := sequentialIssuer()
	tr := transferFunc(func(ctx context.Context, dest string, data []byte, mediaType string) (gallery.Reference, error) {
		time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
		return gallery.Persistent(fmt.Sprintf("https://store.test/bucket/file-%d", data[0])), nil
	})
	c := New(policy.Default(), issuer, tr, ephemeral.NewMemoryStore(), nil, WithConcurrency(8))

	batch := make([]gallery.Candidate, 20)
	for i := range batch {
		batch[i] = gallery.Candidate{Name: fmt.Sprintf("%d.png", i), MediaType: "image/png", Data: []byte{byte(i)}}
	}

	updated, report, err := c.SubmitBatch(context.Background(), batch, nil, 20)
	require.NoError(t, err)
	require.Len(t, updated, 20)
	assert.Equal(t, 20, report.AcceptedCount)
	for i, ref := range updated {
		assert.Equal(t, fmt.Sprintf("https://store.test/bucket/file-%d", i), ref.Locator)
		assert.Equal(t, i, report.Outcomes[i].Index)
	}
}

func TestSubmitBatch_ConcurrencyLimit(t *testing.T) {
	var inFlight, peak atomic.Int64
	issuer, _ := sequentialIssuer()
	tr := transferFunc(func(ctx context.Context, dest string, data []byte, mediaType string) (gallery.Reference, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return stripTransfer().Transfer(ctx, dest, data, mediaType)
	})
	c := New(policy.Default(), issuer, tr, ephemeral.NewMemoryStore(), nil, WithConcurrency(3))

	batch := make([]gallery.Candidate, 12)
	for i := range batch {
		batch[i] = png(fmt.Sprintf("%d.png", i), 1)
	}
	_, _, err := c.SubmitBatch(context.Background(), batch, nil, 12)
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int64(3))
}

func TestSubmitBatch_IgnoresCallerCancellation(t *testing.T) {
	issuer := issuerFunc(func(ctx context.Context) (authority.Destination, error) {
		if err := ctx.Err(); err != nil {
			return authority.Destination{}, err
		}
		return authority.Destination{URL: "https://store.test/bucket/x?sig=1"}, nil
	})
	c := New(policy.Default(), issuer, stripTransfer(), ephemeral.NewMemoryStore(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	updated, report, err := c.SubmitBatch(ctx, []gallery.Candidate{png("a.png", 1)}, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, report.AcceptedCount)
	assert.Equal(t, "https://store.test/bucket/x", updated[0].Locator)
}

func TestWithConcurrency_ClampsToOne(t *testing.T) {
	c := New(policy.Default(), failingIssuer(), stripTransfer(), ephemeral.NewMemoryStore(), nil, WithConcurrency(0))
	assert.Equal(t, 1, c.concurrency)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "persisted", StatePersisted.String())
	assert.Equal(t, "excluded", StateExcluded.String())
	assert.Equal(t, "unknown", State(99).String())
}

func TestSubmitBatch_InvalidDestinationFallsBack(t *testing.T) {
	issuer := issuerFunc(func(ctx context.Context) (authority.Destination, error) {
		return authority.Destination{URL: "https://store.test/?sig=x"}, nil
	})
	store := ephemeral.NewMemoryStore()
	rec := &notify.Recorder{}
	c := New(policy.Default(), issuer, transfer.NewExecutor(nil), store, rec)

	updated, report, err := c.SubmitBatch(context.Background(), []gallery.Candidate{png("a.png", 10)}, nil, 10)
	require.NoError(t, err)

	require.Len(t, updated, 1)
	assert.True(t, updated[0].Ephemeral)
	assert.Equal(t, 1, report.FallbackCount)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, ReasonInvalidDestination, report.Warnings[0].Reason)
	assert.True(t, report.Warnings[0].Fallback)
	assert.Len(t, rec.Events(), 1)
}

func TestSubmitBatch_PanickingNotifierDoesNotAbort(t *testing.T) {
	store := ephemeral.NewMemoryStore()
	var calls atomic.Int64
	n := notify.Func(func(ctx context.Context, e notify.Event) {
		if calls.Add(1) == 1 {
			panic("sink down")
		}
	})
	c := New(policy.Default(), failingIssuer(), stripTransfer(), store, n)

	current := gallery.FromLocators([]string{"keep"})
	updated, report, err := c.SubmitBatch(context.Background(),
		[]gallery.Candidate{png("a.png", 1), png("b.png", 1)}, current, 10)
	require.NoError(t, err)

	require.Len(t, updated, 3)
	assert.Equal(t, 2, report.FallbackCount)
	assert.Equal(t, 2, store.Len(), "previews of a resolved batch stay available")
	assert.Equal(t, int64(2), calls.Load(), "every warning is still delivered")
}
