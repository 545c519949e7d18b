package exporter

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// StartMetricsServer binds the prometheus exposition endpoint once, before
// the collection loop begins. The server reads the registry concurrently
// with the collector writing it; client_golang handles that safety.
func StartMetricsServer(rootCtx context.Context, bind string, registry *prometheus.Registry) {
	serverMux := http.NewServeMux()
	serverMux.Handle("/metrics", promhttp.HandlerFor(
		registry,
		promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:    bind,
		Handler: serverMux,
	}

	go func() {
		<-rootCtx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Infof("start metrics server at %s", bind)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warnf("metrics server error %s", err)
	}
}
