package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdelghafour1223/tiktok-downloder/internal/captcha"
	"github.com/abdelghafour1223/tiktok-downloder/internal/config"
	"github.com/abdelghafour1223/tiktok-downloder/internal/downloader"
	"github.com/abdelghafour1223/tiktok-downloder/internal/jobs"
	"github.com/abdelghafour1223/tiktok-downloder/internal/models"
)

const serviceVersion = "0.1.0"

type Handler struct {
	cfg     *config.Config
	engine  *downloader.Engine
	captcha *captcha.Service
	janitor *jobs.Janitor
}

func NewHandler(cfg *config.Config, engine *downloader.Engine, captchaSvc *captcha.Service, janitor *jobs.Janitor) *Handler {
	return &Handler{cfg: cfg, engine: engine, captcha: captchaSvc, janitor: janitor}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/api/health" {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "healthy",
		"service":           "tiktok-downloader-backend",
		"version":           serviceVersion,
		"recaptcha_enabled": h.cfg.RecaptchaEnabled(),
	})
}

// VideoInfo: POST {url, recaptcha_token?} -> full video metadata
func (h *Handler) VideoInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req models.VideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}
	if !h.verifyCaptcha(w, r, req.RecaptchaToken) {
		return
	}

	info, err := h.engine.GetVideoInfo(r.Context(), req.URL)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// DownloadVideo: legacy POST endpoint, kept for old clients. It streams
// exactly like StreamVideo instead of writing a file.
func (h *Handler) DownloadVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req models.DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}
	if !h.verifyCaptcha(w, r, req.RecaptchaToken) {
		return
	}

	h.streamVideo(w, r, req.URL, req.FormatID)
}

// StreamVideo: GET ?url=&format_id= -> raw video bytes
func (h *Handler) StreamVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	if !h.verifyCaptcha(w, r, q.Get("recaptcha_token")) {
		return
	}

	h.streamVideo(w, r, q.Get("url"), q.Get("format_id"))
}

// StreamAudio: GET ?url= -> mp3 bytes
func (h *Handler) StreamAudio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	if !h.verifyCaptcha(w, r, q.Get("recaptcha_token")) {
		return
	}

	stream, filename, err := h.engine.StreamAudio(r.Context(), q.Get("url"))
	if err != nil {
		writeMappedError(w, err)
		return
	}
	defer stream.Close()

	h.copyStream(w, stream, filename, "audio/mpeg")
}

// ProfileInfo: POST {profile_url, recaptcha_token?} -> profile summary
func (h *Handler) ProfileInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req models.ProfileDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}
	if !h.verifyCaptcha(w, r, req.RecaptchaToken) {
		return
	}

	info, err := h.engine.GetProfileInfo(r.Context(), req.ProfileURL)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// DownloadProfile: POST {profile_url} -> bulk batch, JSON with the archive
// location. The batch runs on context.Background(): once started it
// finishes even if the client goes away, and the ZIP stays retrievable.
func (h *Handler) DownloadProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req models.ProfileDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}
	if !h.verifyCaptcha(w, r, req.RecaptchaToken) {
		return
	}

	zipPath, zipFilename, size, err := h.engine.DownloadProfileZip(context.Background(), req.ProfileURL)
	if err != nil {
		writeMappedError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "success",
		"message":      "Profile ZIP created successfully",
		"filename":     zipFilename,
		"size":         size,
		"zip_path":     zipPath,
		"download_url": downloadURL(zipPath),
	})
}

// DownloadSelected: POST {profile_url, selected_video_urls[]} -> selective
// batch, same response shape plus the selected count.
func (h *Handler) DownloadSelected(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req models.SelectiveProfileDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid JSON")
		return
	}
	if len(req.SelectedVideoURLs) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "No videos selected for download")
		return
	}
	if !h.verifyCaptcha(w, r, req.RecaptchaToken) {
		return
	}

	zipPath, zipFilename, size, err := h.engine.DownloadSelectedZip(context.Background(), req.ProfileURL, req.SelectedVideoURLs)
	if err != nil {
		writeMappedError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "success",
		"message":        fmt.Sprintf("Selected %d videos ZIP created successfully", len(req.SelectedVideoURLs)),
		"filename":       zipFilename,
		"size":           size,
		"selected_count": len(req.SelectedVideoURLs),
		"zip_path":       zipPath,
		"download_url":   downloadURL(zipPath),
	})
}

// StreamProfileZip: GET ?zip_path= -> streams the archive and schedules its
// deferred removal. No captcha here; the creating request was verified.
func (h *Handler) StreamProfileZip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	zipPath := r.URL.Query().Get("zip_path")
	if zipPath == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "zip_path is required")
		return
	}

	file, err := os.Open(zipPath)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "ZIP file not found")
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filepath.Base(zipPath)))
	w.Header().Set("Cache-Control", "no-cache")

	// The stream has started; the grace delay covers slow clients.
	h.janitor.ScheduleArchiveRemoval(zipPath)

	if _, err := io.Copy(w, file); err != nil {
		log.Printf("⚠️ ZIP stream interrupted: %v", err)
	}
}

// --- Helpers (Private) ---

func (h *Handler) streamVideo(w http.ResponseWriter, r *http.Request, url, formatID string) {
	stream, filename, err := h.engine.StreamVideo(r.Context(), url, formatID)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	defer stream.Close()

	h.copyStream(w, stream, filename, "video/mp4")
}

func (h *Handler) copyStream(w http.ResponseWriter, stream io.Reader, filename, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Header().Set("Cache-Control", "no-cache")

	// Headers are already committed; a mid-stream failure can only be logged.
	if _, err := io.Copy(w, stream); err != nil {
		log.Printf("⚠️ Stream interrupted for %s: %v", filename, err)
	}
}

// verifyCaptcha writes the error response itself and reports whether the
// request may proceed.
func (h *Handler) verifyCaptcha(w http.ResponseWriter, r *http.Request, token string) bool {
	if !h.captcha.Enabled() {
		return true
	}
	if token == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			"reCAPTCHA verification required but no token provided")
		return false
	}
	if err := h.captcha.Verify(r.Context(), token, clientIP(r)); err != nil {
		log.Printf("⚠️ reCAPTCHA verification failed: %v", err)
		writeError(w, http.StatusBadRequest, "bad_request",
			"reCAPTCHA verification failed. Please try again")
		return false
	}
	return true
}

// downloadURL builds the follow-up retrieval link, with path separators
// escaped the way the frontend expects.
func downloadURL(zipPath string) string {
	escaped := strings.ReplaceAll(zipPath, "/", "%2F")
	escaped = strings.ReplaceAll(escaped, "\\", "%5C")
	return "/api/profile/stream?zip_path=" + escaped
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
