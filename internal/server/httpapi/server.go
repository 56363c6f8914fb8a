// Package httpapi exposes the upload destination authority and the listing
// images API over HTTP. Every route requires a seller bearer token.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/dmitrijs2005/shopkeeper/internal/server/services"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/authority"
)

// DestinationIssuer presigns upload destinations for a seller.
type DestinationIssuer interface {
	IssueDestination(ctx context.Context, sellerID string) (*services.Destination, error)
}

// ListingStore reads and replaces listing image lists.
type ListingStore interface {
	Images(ctx context.Context, sellerID, listingID string) (*models.Listing, error)
	ReplaceImages(ctx context.Context, sellerID, listingID string, images []string) error
}

type Server struct {
	address   string
	uploads   DestinationIssuer
	listings  ListingStore
	limiter   *SellerRateLimiter
	logger    logging.Logger
	jwtSecret []byte
}

func NewServer(a string, l logging.Logger, uploads DestinationIssuer, listings ListingStore, limiter *SellerRateLimiter, secretKey string) *Server {
	if limiter == nil {
		limiter = NewSellerRateLimiter(0, 1)
	}
	return &Server{
		address:   a,
		logger:    l.With("module", "http_server"),
		uploads:   uploads,
		listings:  listings,
		limiter:   limiter,
		jwtSecret: []byte(secretKey),
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST "+authority.DestinationsPath, s.authenticate(s.rateLimited(http.HandlerFunc(s.issueDestination))))
	mux.Handle("GET /api/listings/{id}/images", s.authenticate(http.HandlerFunc(s.getImages)))
	mux.Handle("PUT /api/listings/{id}/images", s.authenticate(http.HandlerFunc(s.putImages)))

	return s.logRequests(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.limiter.Run(ctx, time.Minute)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
