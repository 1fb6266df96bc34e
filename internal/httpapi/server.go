package httpapi

import (
	"net/http"
	"time"

	"climate-server/internal/config"
)

const readHeaderTimeout = 5 * time.Second

func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
