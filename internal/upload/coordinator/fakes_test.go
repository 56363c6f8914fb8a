package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/dmitrijs2005/shopkeeper/internal/upload/authority"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/ephemeral"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/gallery"
)

type issuerFunc func(ctx context.Context) (authority.Destination, error)

func (f issuerFunc) RequestDestination(ctx context.Context) (authority.Destination, error) {
	return f(ctx)
}

type transferFunc func(ctx context.Context, dest string, data []byte, mediaType string) (gallery.Reference, error)

func (f transferFunc) Transfer(ctx context.Context, dest string, data []byte, mediaType string) (gallery.Reference, error) {
	return f(ctx, dest, data, mediaType)
}

// sequentialIssuer hands out https://store.test/bucket/obj-N?sig=x.
func sequentialIssuer() (DestinationIssuer, *atomic.Int64) {
	var n atomic.Int64
	return issuerFunc(func(ctx context.Context) (authority.Destination, error) {
		i := n.Add(1)
		key := fmt.Sprintf("obj-%d", i)
		return authority.Destination{URL: "https://store.test/bucket/" + key + "?sig=x", Key: key}, nil
	}), &n
}

func failingIssuer() DestinationIssuer {
	return issuerFunc(func(ctx context.Context) (authority.Destination, error) {
		return authority.Destination{}, &authority.Error{StatusCode: 503, Err: errors.New("down")}
	})
}

// stripTransfer succeeds and strips the query the way the real executor does.
func stripTransfer() Transferrer {
	return transferFunc(func(ctx context.Context, dest string, data []byte, mediaType string) (gallery.Reference, error) {
		loc, _, _ := strings.Cut(dest, "?")
		return gallery.Persistent(loc), nil
	})
}

type brokenStore struct{}

func (brokenStore) Put(ctx context.Context, obj ephemeral.Object) (string, error) {
	return "", errors.New("disk full")
}

func (brokenStore) Get(ctx context.Context, loc string) (ephemeral.Object, error) {
	return ephemeral.Object{}, ephemeral.ErrNotFound
}

func (brokenStore) Release(ctx context.Context, loc string) error { return nil }

func png(name string, size int) gallery.Candidate {
	return gallery.Candidate{Name: name, MediaType: "image/png", Data: make([]byte, size)}
}
