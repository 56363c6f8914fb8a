package grpc

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/shopkeeper/internal/logging"
)

func TestLoggingInterceptor_PassesThroughAndLogs(t *testing.T) {
	var buf bytes.Buffer
	s := NewGRPCServer("", logging.NewText(&buf, slog.LevelDebug), nil, 0)

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	resp, err := s.loggingInterceptor(context.Background(), "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Contains(t, buf.String(), "method=/grpc.health.v1.Health/Check")
	assert.Contains(t, buf.String(), "code=OK")

	_, err = s.loggingInterceptor(context.Background(), "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.Unavailable, "down")
	})
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.Contains(t, buf.String(), "code=Unavailable")
}
