package monitoring

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// shutdownTimeout bounds how long in-flight scrapes may take once the
// exporter is asked to stop.
const shutdownTimeout = 5 * time.Second

// Serve exposes the metrics gathered by the gatherer on /metrics at the
// listen address. It blocks until the context is cancelled or the server
// fails.
func Serve(ctx context.Context, listen string,
	gatherer prometheus.Gatherer) error {

	lis, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("unable to listen on %v: %w", listen, err)
	}

	return ServeListener(ctx, lis, gatherer)
}

// ServeListener is like Serve but uses an existing listener, which it closes
// on return.
func ServeListener(ctx context.Context, lis net.Listener,
	gatherer prometheus.Gatherer) error {

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(
		gatherer, promhttp.HandlerOpts{},
	))

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(lis)
	}()

	log.Infof("Prometheus exporter started on %v/metrics", lis.Addr())

	select {
	case err := <-errChan:
		return fmt.Errorf("prometheus exporter failed: %w", err)

	case <-ctx.Done():
	}

	log.Infof("Prometheus exporter shutting down")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), shutdownTimeout,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("unable to stop prometheus exporter: %w", err)
	}

	if err := <-errChan; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
