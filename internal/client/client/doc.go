// Package client contains the CLI's transport to the shopkeeper server.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface): read and
//     replace the image list of a listing, and check server liveness.
//  2. A REST implementation of the listing images API (see APIClient).
//  3. A gRPC health checker (see HealthChecker) speaking grpc.health.v1.
//  4. ServerClient, which combines both behind Client.
//
// Upload destinations are requested by the upload/authority package, which
// shares the base URL and token source.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrForbidden, ErrRejected.
//
// All operations accept context.Context and honor cancellation/timeouts.
package client
