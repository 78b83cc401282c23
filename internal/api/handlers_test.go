package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abdelghafour1223/tiktok-downloder/internal/captcha"
	"github.com/abdelghafour1223/tiktok-downloder/internal/config"
	"github.com/abdelghafour1223/tiktok-downloder/internal/downloader"
	"github.com/abdelghafour1223/tiktok-downloder/internal/jobs"
)

// syncScheduler runs deferred tasks immediately so tests observe cleanup
// deterministically.
type syncScheduler struct {
	ran bool
}

func (s *syncScheduler) AfterFunc(d time.Duration, fn func()) {
	s.ran = true
	fn()
}

func newTestHandler(t *testing.T, sched jobs.Scheduler) (*Handler, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		DownloadDir:     t.TempDir(),
		TempDir:         t.TempDir(),
		ZipCleanupDelay: 30 * time.Second,
		YtdlpPath:       "/nonexistent/yt-dlp",
	}
	engine := downloader.NewEngine(cfg, downloader.NewNameSequence())
	h := NewHandler(cfg, engine, captcha.New(""), jobs.NewJanitor(cfg, sched))
	return h, cfg
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t, jobs.NewTimerScheduler())

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v", body["status"])
	}
	if body["recaptcha_enabled"] != false {
		t.Errorf("recaptcha_enabled = %v", body["recaptcha_enabled"])
	}
}

func TestHealthUnknownPathIs404(t *testing.T) {
	h, _ := newTestHandler(t, jobs.NewTimerScheduler())

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestVideoInfoInvalidURL(t *testing.T) {
	h, _ := newTestHandler(t, jobs.NewTimerScheduler())

	body := strings.NewReader(`{"url": "https://youtube.com/watch?v=123"}`)
	rec := httptest.NewRecorder()
	h.VideoInfo(rec, httptest.NewRequest(http.MethodPost, "/api/video/info", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	apiErr := decodeAPIError(t, rec)
	if apiErr.Error != "bad_request" {
		t.Errorf("error type = %s", apiErr.Error)
	}
}

func TestVideoInfoInvalidJSON(t *testing.T) {
	h, _ := newTestHandler(t, jobs.NewTimerScheduler())

	rec := httptest.NewRecorder()
	h.VideoInfo(rec, httptest.NewRequest(http.MethodPost, "/api/video/info", strings.NewReader("{")))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestVideoInfoMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t, jobs.NewTimerScheduler())

	rec := httptest.NewRecorder()
	h.VideoInfo(rec, httptest.NewRequest(http.MethodGet, "/api/video/info", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestDownloadSelectedRequiresSelection(t *testing.T) {
	h, _ := newTestHandler(t, jobs.NewTimerScheduler())

	body := strings.NewReader(`{"profile_url": "https://www.tiktok.com/@user", "selected_video_urls": []}`)
	rec := httptest.NewRecorder()
	h.DownloadSelected(rec, httptest.NewRequest(http.MethodPost, "/api/profile/download-selected", body))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStreamProfileZip(t *testing.T) {
	sched := &syncScheduler{}
	h, cfg := newTestHandler(t, sched)

	zipPath := filepath.Join(cfg.DownloadDir, "tiktok_profile_user.zip")
	if err := os.WriteFile(zipPath, []byte("zip-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/profile/stream?zip_path="+zipPath, nil)
	h.StreamProfileZip(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("content-type = %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "tiktok_profile_user.zip") {
		t.Errorf("content-disposition = %s", cd)
	}
	if rec.Body.String() != "zip-bytes" {
		t.Errorf("body = %q", rec.Body.String())
	}

	// Deferred removal was scheduled and, with the synchronous scheduler,
	// has already deleted the archive.
	if !sched.ran {
		t.Error("archive removal was not scheduled")
	}
	if _, err := os.Stat(zipPath); !os.IsNotExist(err) {
		t.Error("archive still present after deferred cleanup")
	}
}

func TestStreamProfileZipMissingFile(t *testing.T) {
	h, cfg := newTestHandler(t, jobs.NewTimerScheduler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/profile/stream?zip_path="+filepath.Join(cfg.DownloadDir, "gone.zip"), nil)
	h.StreamProfileZip(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStreamProfileZipMissingParam(t *testing.T) {
	h, _ := newTestHandler(t, jobs.NewTimerScheduler())

	rec := httptest.NewRecorder()
	h.StreamProfileZip(rec, httptest.NewRequest(http.MethodGet, "/api/profile/stream", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDownloadURLEscaping(t *testing.T) {
	got := downloadURL("/data/downloads/tiktok_profile_user.zip")
	want := "/api/profile/stream?zip_path=%2Fdata%2Fdownloads%2Ftiktok_profile_user.zip"
	if got != want {
		t.Errorf("downloadURL = %s, want %s", got, want)
	}
}

func TestRouterRoutes(t *testing.T) {
	h, cfg := newTestHandler(t, jobs.NewTimerScheduler())
	cfg.RateLimitRequests = 100
	cfg.RateLimitWindow = time.Minute
	cfg.CORSOrigins = []string{"*"}
	router := NewRouter(h, cfg)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.RemoteAddr = "10.1.1.1:1000"
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("health through router = %d", rec.Code)
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("security headers missing from router chain")
	}
}
