package grpc

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
)

const healthMethodPrefix = "/grpc.health.v1.Health/"

var errPanicked = status.Error(codes.Internal, "internal server error")

func panicFields(method string, r interface{}) []logging.Field {
	return []logging.Field{
		logging.String("method", method),
		logging.String("panic", fmt.Sprint(r)),
		logging.String("stack", string(debug.Stack())),
	}
}

func recoveryUnaryInterceptor(logger logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("grpc panic recovered", panicFields(info.FullMethod, r)...)
				resp, err = nil, errPanicked
			}
		}()
		return handler(ctx, req)
	}
}

func recoveryStreamInterceptor(logger logging.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("grpc stream panic recovered", panicFields(info.FullMethod, r)...)
				err = errPanicked
			}
		}()
		return handler(srv, ss)
	}
}

// loggingUnaryInterceptor leaves health probes out of the log.
func loggingUnaryInterceptor(logger logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if strings.HasPrefix(info.FullMethod, healthMethodPrefix) {
			return handler(ctx, req)
		}
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("grpc request",
			logging.String("method", info.FullMethod),
			logging.Duration("duration", time.Since(start)),
			logging.String("code", status.Code(err).String()))
		return resp, err
	}
}

//Personal.AI order the ending
