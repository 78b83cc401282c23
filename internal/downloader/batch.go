package downloader

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdelghafour1223/tiktok-downloder/internal/models"
	"github.com/abdelghafour1223/tiktok-downloder/internal/tiktok"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Rough per-video estimate for the profile ZIP size, not measured.
const bytesPerVideoEstimate = 5_000_000

// Only these containers are collected from a session directory; yt-dlp side
// artifacts (thumbnails, .part files, info json) are ignored.
var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".webm": {},
	".mkv":  {},
}

// DownloadProfileZip downloads every video of a profile in one yt-dlp
// invocation and packages the results into a ZIP in the persistent downloads
// directory. Bulk mode cannot attribute per-item failures, so a non-zero
// exit fails the whole batch. Returns the archive path, filename and size.
func (e *Engine) DownloadProfileZip(ctx context.Context, profileURL string) (string, string, int64, error) {
	username, sessionDir, err := e.openSession(ctx, "profile", profileURL)
	if err != nil {
		return "", "", 0, err
	}

	if err := e.downloadIntoSession(ctx, profileURL, sessionDir); err != nil {
		e.removeSession(sessionDir)
		return "", "", 0, errors.Wrap(models.ErrBatchDownloadFailed, err.Error())
	}

	zipFilename := fmt.Sprintf("tiktok_profile_%s.zip", username)
	return e.finishSession(sessionDir, zipFilename)
}

// DownloadSelectedZip downloads the requested URLs one at a time. A single
// video's failure is logged and skipped; the batch only fails if nothing at
// all was downloaded. This asymmetry with bulk mode is intentional:
// selective mode can attribute failures, bulk mode cannot.
func (e *Engine) DownloadSelectedZip(ctx context.Context, profileURL string, selectedURLs []string) (string, string, int64, error) {
	if len(selectedURLs) == 0 {
		return "", "", 0, errors.Wrap(models.ErrInvalidInput, "no videos selected")
	}

	username, sessionDir, err := e.openSession(ctx, "selective", profileURL)
	if err != nil {
		return "", "", 0, err
	}

	for i, url := range selectedURLs {
		log.Printf("📥 Downloading video %d of %d: %s", i+1, len(selectedURLs), url)
		if err := e.downloadIntoSession(ctx, url, sessionDir); err != nil {
			log.Printf("⚠️ Skipping failed video %s: %v", url, err)
			continue
		}
	}

	files, err := collectVideoFiles(sessionDir)
	if err != nil {
		e.removeSession(sessionDir)
		return "", "", 0, err
	}

	zipFilename := fmt.Sprintf("tiktok_selected_%s_%d_videos.zip", username, len(files))
	return e.finishSession(sessionDir, zipFilename)
}

// openSession validates the profile URL and creates the per-request scratch
// directory under the temp root.
func (e *Engine) openSession(ctx context.Context, kind, profileURL string) (string, string, error) {
	if !tiktok.IsProfileURL(profileURL) {
		return "", "", models.ErrInvalidInput
	}
	if err := e.CheckAvailability(ctx); err != nil {
		return "", "", err
	}

	username, ok := tiktok.ExtractUsername(profileURL)
	if !ok {
		return "", "", errors.Wrap(models.ErrInvalidInput, "could not extract username")
	}

	sessionDir := filepath.Join(e.cfg.TempDir, fmt.Sprintf("%s_%s_%s", kind, username, uuid.New().String()))
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return "", "", errors.Wrap(err, "creating session directory")
	}
	log.Printf("📂 Created session directory: %s", sessionDir)

	return username, sessionDir, nil
}

// finishSession zips whatever qualified files the session holds into the
// persistent downloads directory, then tears the session down. Cleanup is
// unconditional; the session directory never outlives the batch.
func (e *Engine) finishSession(sessionDir, zipFilename string) (string, string, int64, error) {
	files, err := collectVideoFiles(sessionDir)
	if err != nil {
		e.removeSession(sessionDir)
		return "", "", 0, err
	}
	if len(files) == 0 {
		e.removeSession(sessionDir)
		return "", "", 0, models.ErrNoVideosDownloaded
	}

	zipPath := filepath.Join(e.cfg.DownloadDir, zipFilename)
	size, err := buildZipArchive(files, zipPath)
	if err != nil {
		e.removeSession(sessionDir)
		return "", "", 0, err
	}

	for _, f := range files {
		if err := os.Remove(f); err != nil {
			log.Printf("⚠️ Could not remove video file %s: %v", f, err)
		}
	}
	e.removeSession(sessionDir)

	log.Printf("📦 ZIP archive created: %s (%d bytes)", zipPath, size)
	return zipPath, zipFilename, size, nil
}

// downloadIntoSession runs one yt-dlp download invocation targeting url
// (a whole profile or a single video) with the session output template.
func (e *Engine) downloadIntoSession(ctx context.Context, url, sessionDir string) error {
	_, err := e.run(ctx, "download",
		"--no-warnings",
		"--no-post-overwrites",
		"--format", "best[ext=mp4]",
		"--output", filepath.Join(sessionDir, "%(uploader)s_%(title)s_%(id)s.%(ext)s"),
		url,
	)
	return err
}

// collectVideoFiles scans the session directory, non-recursively, for files
// on the container allow-list.
func collectVideoFiles(sessionDir string) ([]string, error) {
	entries, err := os.ReadDir(sessionDir)
	if err != nil {
		return nil, errors.Wrap(err, "scanning session directory")
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := videoExtensions[ext]; ok {
			files = append(files, filepath.Join(sessionDir, entry.Name()))
		}
	}
	return files, nil
}

// removeSession tolerates removal errors; an orphaned directory is
// acceptable collateral, a failed response is not.
func (e *Engine) removeSession(sessionDir string) {
	if err := os.RemoveAll(sessionDir); err != nil {
		log.Printf("⚠️ Could not remove session directory %s: %v", sessionDir, err)
	}
}
