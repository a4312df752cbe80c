// Package grpc exposes the standard grpc.health.v1 service for the pricing
// API so gRPC-aware load balancers can probe it.
package grpc

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"

	"github.com/turtacn/KeyIP-Pricing/internal/config"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/logging"
)

// PricingServiceName is reported next to the overall ("") status.
const PricingServiceName = "keyprice.pricing.v1.Pricing"

var errAlreadyStarted = errors.New("grpc server already started")

type settings struct {
	logger    logging.Logger
	keepalive keepalive.ServerParameters
	drain     time.Duration
}

type Option func(*settings)

func WithLogger(l logging.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithKeepaliveParams(p keepalive.ServerParameters) Option {
	return func(s *settings) { s.keepalive = p }
}

// WithGracefulTimeout bounds how long Stop waits for in-flight calls.
func WithGracefulTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.drain = d
		}
	}
}

type Server struct {
	srv    *grpc.Server
	health *health.Server
	lis    net.Listener
	log    logging.Logger
	drain  time.Duration

	mu      sync.Mutex
	started bool
}

// NewServer listens on host:cfg.Port right away, so Addr is valid before
// Start. Both health entries begin NOT_SERVING.
func NewServer(host string, cfg config.GRPCServerConfig, opts ...Option) (*Server, error) {
	st := settings{
		logger: logging.NewNopLogger(),
		keepalive: keepalive.ServerParameters{
			MaxConnectionIdle: 15 * time.Minute,
			MaxConnectionAge:  30 * time.Minute,
			Time:              5 * time.Minute,
			Timeout:           time.Second,
		},
		drain: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(&st)
	}

	lis, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(cfg.Port)))
	if err != nil {
		return nil, err
	}

	s := &Server{
		srv: grpc.NewServer(
			grpc.KeepaliveParams(st.keepalive),
			grpc.ChainUnaryInterceptor(recoveryUnaryInterceptor(st.logger), loggingUnaryInterceptor(st.logger)),
			grpc.ChainStreamInterceptor(recoveryStreamInterceptor(st.logger)),
		),
		health: health.NewServer(),
		lis:    lis,
		log:    st.logger,
		drain:  st.drain,
	}
	healthpb.RegisterHealthServer(s.srv, s.health)
	s.SetServing(false)
	return s, nil
}

func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	for _, name := range []string{"", PricingServiceName} {
		s.health.SetServingStatus(name, status)
	}
}

// MonitorHealth mirrors check into the health service, once immediately and
// then every interval, until ctx is done.
func (s *Server) MonitorHealth(ctx context.Context, interval time.Duration, check func(ctx context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		probeCtx, cancel := context.WithTimeout(ctx, interval)
		err := check(probeCtx)
		cancel()
		if err != nil {
			s.log.Warn("grpc health probe failed", logging.Err(err))
		}
		s.SetServing(err == nil)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Start blocks serving until Stop.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	s.log.Info("grpc server listening", logging.String("address", s.Addr()))
	return s.srv.Serve(s.lis)
}

// Stop drains in-flight calls and falls back to a hard stop when the drain
// window or ctx runs out.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return s.lis.Close()
	}

	s.health.Shutdown()
	ctx, cancel := context.WithTimeout(ctx, s.drain)
	defer cancel()

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		s.srv.GracefulStop()
	}()
	select {
	case <-drained:
		s.log.Info("grpc server stopped")
	case <-ctx.Done():
		s.log.Warn("grpc drain timed out, forcing stop")
		s.srv.Stop()
	}
	return nil
}

func (s *Server) Addr() string { return s.lis.Addr().String() }

//Personal.AI order the ending
