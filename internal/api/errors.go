package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/abdelghafour1223/tiktok-downloder/internal/models"
)

// writeError emits the structured JSON failure body every endpoint uses.
func writeError(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.APIError{
		Error:   errType,
		Message: message,
		Code:    status,
	})
}

// writeMappedError translates a pipeline error into an HTTP response.
// Validation failures and dependency problems map to clear client messages;
// everything else is sanitized so internals and paths are not echoed.
func writeMappedError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "bad_request",
			"Invalid or unsupported TikTok URL")
	case errors.Is(err, models.ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, "bad_request",
			"The requested format is not available for this video")
	case errors.Is(err, models.ErrDependencyUnavailable):
		log.Printf("❌ Dependency error: %v", err)
		writeError(w, http.StatusServiceUnavailable, "service_unavailable",
			"The download service is temporarily unavailable. Please try again later.")
	case errors.Is(err, models.ErrNoVideosDownloaded):
		log.Printf("❌ Batch error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error",
			"No videos could be downloaded from this profile")
	case errors.Is(err, models.ErrBatchDownloadFailed):
		log.Printf("❌ Batch error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error",
			"The profile download failed. The profile may be private or empty.")
	default:
		log.Printf("❌ Internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", wrapError(err))
	}
}

// wrapError maps low-level failure text to something safe to show a client
func wrapError(err error) string {
	msg := err.Error()

	var procErr *models.ProcessError
	if errors.As(err, &procErr) {
		msg = procErr.Stderr
	}

	switch {
	case strings.Contains(msg, "permission denied"):
		return "Storage permission denied. Please contact system administrator."
	case strings.Contains(msg, "no space left"):
		return "Disk space exhausted. Cannot complete download."
	case strings.Contains(msg, "Unable to extract") || strings.Contains(msg, "Unsupported URL"):
		return "TikTok restricted access to this content or the URL is not supported."
	case strings.Contains(msg, "HTTP Error 404") || strings.Contains(msg, "not found"):
		return "This video or profile could not be found. It may have been removed."
	case strings.Contains(msg, "403"):
		return "Access forbidden. TikTok might be throttling the server IP."
	default:
		// Genel teknik hata mesajı (Path ifşasını önler)
		return "An unexpected technical error occurred during processing."
	}
}
