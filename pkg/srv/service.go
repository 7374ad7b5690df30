package srv

import (
	"context"
	"time"

	"github.com/sandevgo/zhipukit/pkg/log"
)

const shutdownTimeout = 10 * time.Second

type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// StartServices runs each service in its own goroutine. A failed start is
// reported on the returned channel.
func StartServices(ctx context.Context, services []Service) <-chan error {
	errs := make(chan error, len(services))
	for _, service := range services {
		go func(service Service) {
			if err := service.Start(ctx); err != nil {
				log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to start", service)
				errs <- err
			}
		}(service)
	}
	return errs
}

// ShutdownServices waits for ctx to end, then stops services in reverse
// order with a fresh deadline.
func ShutdownServices(ctx context.Context, services []Service) {
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Shutdown(stopCtx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to shutdown", services[i])
		}
	}
}
