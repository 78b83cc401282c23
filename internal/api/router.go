package api

import (
	"net/http"

	"github.com/abdelghafour1223/tiktok-downloder/internal/config"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter setup routes and apply global middleware
func NewRouter(h *Handler, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", h.Health)
	mux.HandleFunc("/api/health", h.Health)

	// Single video endpoints
	mux.HandleFunc("/api/video/info", h.VideoInfo)
	mux.HandleFunc("/api/video/download", h.DownloadVideo) // legacy, streams now
	mux.HandleFunc("/api/video/stream", h.StreamVideo)
	mux.HandleFunc("/api/video/audio-stream", h.StreamAudio)

	// Profile endpoints
	mux.HandleFunc("/api/profile/info", h.ProfileInfo)
	mux.HandleFunc("/api/profile/download", h.DownloadProfile)
	mux.HandleFunc("/api/profile/download-selected", h.DownloadSelected)
	mux.HandleFunc("/api/profile/stream", h.StreamProfileZip)

	// Serve archives directly for backward compatibility
	mux.Handle("/api/downloads/", http.StripPrefix("/api/downloads/",
		http.FileServer(http.Dir(cfg.DownloadDir))))

	mux.Handle("/metrics", promhttp.Handler())

	rl := NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)

	// Outermost first: CORS -> logging -> security -> rate limit -> metrics
	var handler http.Handler = mux
	handler = MetricsMiddleware(handler)
	handler = RateLimitMiddleware(rl, handler)
	handler = SecurityHeadersMiddleware(handler)
	handler = LoggingMiddleware(handler)
	handler = CORSMiddleware(cfg.CORSOrigins, handler)

	return handler
}
