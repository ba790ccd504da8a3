package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"vulnDemo/internal/config"
)

// Start listens on cfg.HTTP.Address and serves handler in the background.
// It returns the bound address and a shutdown function.
func Start(cfg *config.Config, handler http.Handler, logger *slog.Logger) (string, func(context.Context) error, error) {
	if cfg == nil {
		panic("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	addr := cfg.HTTP.Address
	if addr == "" {
		addr = "0.0.0.0:5000"
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, err
	}

	// No read or write timeouts: a hung ping holds its request open.
	srv := &http.Server{Handler: handler}

	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", "error", err)
		}
	}()

	return lis.Addr().String(), srv.Shutdown, nil
}
