package client

import (
	"context"
	"errors"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	ListImages(ctx context.Context, listingID string) ([]string, error)
	SaveImages(ctx context.Context, listingID string, images []string) error
}

// ServerClient talks REST for listing data and gRPC for liveness.
type ServerClient struct {
	*APIClient
	health *HealthChecker
}

func NewServerClient(api *APIClient, health *HealthChecker) *ServerClient {
	return &ServerClient{APIClient: api, health: health}
}

func (c *ServerClient) Ping(ctx context.Context) error {
	return c.health.Ping(ctx)
}

func (c *ServerClient) Close() error {
	return errors.Join(c.APIClient.Close(), c.health.Close())
}
