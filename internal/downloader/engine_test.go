package downloader

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/abdelghafour1223/tiktok-downloder/internal/config"
	"github.com/abdelghafour1223/tiktok-downloder/internal/models"
)

// writeFakeYtdlp drops a shell script standing in for yt-dlp. Every script
// must answer the --version probe.
func writeFakeYtdlp(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yt-dlp")
	full := "#!/bin/sh\nif [ \"$1\" = \"--version\" ]; then echo 2025.01.01; exit 0; fi\n" + script
	if err := os.WriteFile(path, []byte(full), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func testEngine(t *testing.T, ytdlpPath string) *Engine {
	t.Helper()
	cfg := &config.Config{
		DownloadDir: t.TempDir(),
		TempDir:     t.TempDir(),
		YtdlpPath:   ytdlpPath,
	}
	return NewEngine(cfg, NewNameSequence())
}

const videoInfoJSON = `{"id":"7301234567890123456","title":"Test Video","uploader_id":"user","description":"a clip","duration":12.5,"view_count":100,"like_count":5,"comment_count":2,"upload_date":"20240102","webpage_url":"https://www.tiktok.com/@user/video/7301234567890123456","thumbnails":[{"id":"cover","url":"https://cdn/cover.jpg","height":1080,"width":1080}],"formats":[{"format_id":"f720","ext":"mp4","quality":7,"height":720,"width":576,"vcodec":"h264","url":"https://cdn/720.mp4"},{"format_id":"f1080","ext":"mp4","quality":10,"height":1080,"width":864,"vcodec":"h264","url":"https://cdn/1080.mp4"}]}`

func metadataScript() string {
	return "cat <<'EOF'\n" + videoInfoJSON + "\nEOF\n"
}

func TestGetVideoInfoRejectsBadURLBeforeSpawning(t *testing.T) {
	// A nonexistent binary proves no subprocess is ever probed or spawned:
	// the dependency check would fail loudly if validation didn't run first.
	engine := testEngine(t, "/nonexistent/yt-dlp")

	urls := []string{
		"https://youtube.com/watch?v=123",
		"not-a-url",
		"https://tiktok.com/invalid",
	}
	for _, url := range urls {
		_, err := engine.GetVideoInfo(context.Background(), url)
		if !errors.Is(err, models.ErrInvalidInput) {
			t.Errorf("GetVideoInfo(%q) = %v, want ErrInvalidInput", url, err)
		}
	}
}

func TestGetVideoInfoMissingDependency(t *testing.T) {
	engine := testEngine(t, "/nonexistent/yt-dlp")

	_, err := engine.GetVideoInfo(context.Background(), "https://www.tiktok.com/@user/video/123")
	if !errors.Is(err, models.ErrDependencyUnavailable) {
		t.Errorf("got %v, want ErrDependencyUnavailable", err)
	}
}

func TestGetVideoInfoEndToEnd(t *testing.T) {
	engine := testEngine(t, writeFakeYtdlp(t, metadataScript()))

	info, err := engine.GetVideoInfo(context.Background(), "https://www.tiktok.com/@user/video/7301234567890123456")
	if err != nil {
		t.Fatalf("GetVideoInfo: %v", err)
	}

	if len(info.AvailableFormats) != 2 {
		t.Fatalf("got %d formats, want 2", len(info.AvailableFormats))
	}
	if info.AvailableFormats[0].Quality != "1080p" {
		t.Errorf("first format quality = %s, want 1080p", info.AvailableFormats[0].Quality)
	}
	if info.Title != "Test Video" || info.Author != "user" {
		t.Errorf("title/author = %q/%q", info.Title, info.Author)
	}
	if info.ThumbnailURL == nil || *info.ThumbnailURL != "https://cdn/cover.jpg" {
		t.Errorf("thumbnail = %v, want cover URL", info.ThumbnailURL)
	}
	if info.VideoURL != "https://cdn/1080.mp4" {
		t.Errorf("video_url = %s, want highest-quality mp4", info.VideoURL)
	}
	if info.CreatedAt.Year() != 2024 || info.CreatedAt.Month() != 1 {
		t.Errorf("created_at = %v, want parsed upload date", info.CreatedAt)
	}
}

func TestGetVideoInfoProcessFailure(t *testing.T) {
	engine := testEngine(t, writeFakeYtdlp(t, "echo 'ERROR: Unable to extract' >&2\nexit 1\n"))

	_, err := engine.GetVideoInfo(context.Background(), "https://www.tiktok.com/@user/video/123")
	var procErr *models.ProcessError
	if !errors.As(err, &procErr) {
		t.Fatalf("got %v, want *models.ProcessError", err)
	}
	if procErr.Stderr != "ERROR: Unable to extract" {
		t.Errorf("stderr = %q", procErr.Stderr)
	}
}

func TestStreamVideoRejectsUnadvertisedFormat(t *testing.T) {
	engine := testEngine(t, writeFakeYtdlp(t, metadataScript()))

	_, _, err := engine.StreamVideo(context.Background(), "https://www.tiktok.com/@user/video/7301234567890123456", "evil-format")
	if !errors.Is(err, models.ErrInvalidFormat) {
		t.Fatalf("got %v, want ErrInvalidFormat", err)
	}
}

func TestStreamVideo(t *testing.T) {
	script := "case \"$*\" in\n*--dump-json*)\n" + metadataScript() + "exit 0;;\nesac\nprintf VIDEOBYTES\n"
	engine := testEngine(t, writeFakeYtdlp(t, script))

	stream, filename, err := engine.StreamVideo(context.Background(), "https://www.tiktok.com/@user/video/7301234567890123456", "f720")
	if err != nil {
		t.Fatalf("StreamVideo: %v", err)
	}
	defer stream.Close()

	if filename != "tiktok_video_1.mp4" {
		t.Errorf("filename = %s, want tiktok_video_1.mp4", filename)
	}

	data, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("draining stream: %v", err)
	}
	if string(data) != "VIDEOBYTES" {
		t.Errorf("stream body = %q", data)
	}
}

func TestStreamAudio(t *testing.T) {
	engine := testEngine(t, writeFakeYtdlp(t, "printf AUDIOBYTES\n"))

	stream, filename, err := engine.StreamAudio(context.Background(), "https://www.tiktok.com/@user/video/123")
	if err != nil {
		t.Fatalf("StreamAudio: %v", err)
	}
	defer stream.Close()

	if filename != "tiktok_audio_1.mp3" {
		t.Errorf("filename = %s, want tiktok_audio_1.mp3", filename)
	}

	data, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("draining stream: %v", err)
	}
	if string(data) != "AUDIOBYTES" {
		t.Errorf("stream body = %q", data)
	}
}

func TestFilenameCounterIncrements(t *testing.T) {
	engine := testEngine(t, writeFakeYtdlp(t, "printf x\n"))

	_, first, err := engine.StreamAudio(context.Background(), "https://www.tiktok.com/@user/video/1")
	if err != nil {
		t.Fatal(err)
	}
	_, second, err := engine.StreamAudio(context.Background(), "https://www.tiktok.com/@user/video/2")
	if err != nil {
		t.Fatal(err)
	}

	if first != "tiktok_audio_1.mp3" || second != "tiktok_audio_2.mp3" {
		t.Errorf("filenames = %s, %s", first, second)
	}
}
