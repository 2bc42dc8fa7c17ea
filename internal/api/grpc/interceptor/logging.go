package interceptor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"karhubty-backend/internal/logger"
)

const requestIDKey = "x-request-id"

// Logging returns a unary interceptor that tags the context with a request id
// and logs every call with its status code.
func Logging() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		ctx = logger.WithRequestID(ctx, requestID(ctx))

		resp, err := handler(ctx, req)

		code := status.Code(err)
		log := logger.FromContext(ctx)
		if err != nil {
			log.Warn("gRPC call failed", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start), "error", err)
		} else {
			log.Debug("gRPC call", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start))
		}
		return resp, err
	}
}

func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(requestIDKey); len(ids) > 0 && ids[0] != "" {
			return ids[0]
		}
	}
	return uuid.NewString()
}
