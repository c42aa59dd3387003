package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"trade_exchange/pkg/logx"
	"trade_exchange/pkg/middlewarex"
)

const (
	logFieldMaxLen    = 4096
	readHeaderTimeout = 5 * time.Second
)

// NewHTTPServer собирает роутер с общими middleware.
func NewHTTPServer(address string, s Server) *http.Server {
	masker := logx.NewSensitiveDataMasker()

	r := chi.NewRouter()
	r.Use(
		middlewarex.TraceID,
		middlewarex.ContextLogger,
		middlewarex.RequestLogging(masker, logFieldMaxLen),
		middlewarex.ResponseLogging(masker, logFieldMaxLen),
		middlewarex.Recovery,
	)

	s.RegisterRoutes(r)

	return &http.Server{
		//nolint:exhaustruct
		Addr:              address,
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
