package main

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/database/postgres"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/database/redis"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Pricing/internal/infrastructure/storage/minio"
	"github.com/turtacn/KeyIP-Pricing/internal/interfaces/http/handlers"
)

func postgresChecker(conn *postgres.Connection) handlers.HealthChecker {
	return handlers.NewChecker("postgres", conn.HealthCheck)
}

func redisChecker(client *redis.Client) handlers.HealthChecker {
	return handlers.NewChecker("redis", client.Ping)
}

func minioChecker(client *minio.Client) handlers.HealthChecker {
	return handlers.NewChecker("minio", client.HealthCheck)
}

// healthGauge exports each readiness result as a health_check_status gauge.
func healthGauge(m *prometheus.AppMetrics) handlers.HealthObserver {
	return func(component string, up bool) {
		prometheus.SetHealth(m, component, up)
	}
}

// allHealthy is the gRPC health probe: every checker must pass.
func allHealthy(checkers []handlers.HealthChecker) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		for _, c := range checkers {
			cctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := c.Check(cctx)
			cancel()
			if err != nil {
				return fmt.Errorf("%s: %w", c.Name(), err)
			}
		}
		return nil
	}
}

//Personal.AI order the ending
