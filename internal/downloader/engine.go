package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/exec"
	"strings"

	"github.com/abdelghafour1223/tiktok-downloder/internal/config"
	"github.com/abdelghafour1223/tiktok-downloder/internal/models"
	"github.com/abdelghafour1223/tiktok-downloder/internal/tiktok"

	stderrors "errors"

	"github.com/pkg/errors"
)

// Engine orchestrates every yt-dlp invocation: metadata extraction, direct
// streaming and the batch profile pipelines. It holds no per-request state
// beyond the injected filename sequence.
type Engine struct {
	cfg *config.Config
	seq *NameSequence
}

func NewEngine(cfg *config.Config, seq *NameSequence) *Engine {
	return &Engine{cfg: cfg, seq: seq}
}

// CheckAvailability probes yt-dlp before any real invocation so a missing
// dependency surfaces as a clear error instead of a spawn failure.
func (e *Engine) CheckAvailability(ctx context.Context) error {
	if _, err := exec.LookPath(e.cfg.YtdlpPath); err != nil {
		return errors.Wrapf(models.ErrDependencyUnavailable, "%q not found in PATH", e.cfg.YtdlpPath)
	}
	if err := exec.CommandContext(ctx, e.cfg.YtdlpPath, "--version").Run(); err != nil {
		return errors.Wrap(models.ErrDependencyUnavailable, "version probe failed")
	}
	return nil
}

// GetVideoInfo extracts full metadata for a single video without downloading.
func (e *Engine) GetVideoInfo(ctx context.Context, url string) (*models.VideoInfo, error) {
	if !tiktok.IsVideoURL(url) {
		return nil, models.ErrInvalidInput
	}
	if err := e.CheckAvailability(ctx); err != nil {
		return nil, err
	}

	out, err := e.run(ctx, "video info", "--dump-json", "--no-download", "--no-warnings", url)
	if err != nil {
		return nil, err
	}

	var raw ytdlpVideo
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, errors.Wrap(err, "parsing yt-dlp metadata")
	}

	return buildVideoInfo(&raw, url), nil
}

// StreamVideo spawns yt-dlp emitting the requested format to stdout and
// returns the live stream plus a generated filename. No disk I/O happens on
// this path; the caller must Close the stream on every exit.
func (e *Engine) StreamVideo(ctx context.Context, url, formatID string) (*ProcessStream, string, error) {
	if !tiktok.IsVideoURL(url) {
		return nil, "", models.ErrInvalidInput
	}
	if err := e.CheckAvailability(ctx); err != nil {
		return nil, "", err
	}

	// The metadata pass whitelists formatID: only advertised ids may be
	// forwarded to the subprocess.
	info, err := e.GetVideoInfo(ctx, url)
	if err != nil {
		return nil, "", err
	}
	if !hasFormat(info.AvailableFormats, formatID) {
		return nil, "", errors.Wrapf(models.ErrInvalidFormat, "format %q not advertised", formatID)
	}

	filename := fmt.Sprintf("tiktok_video_%d.mp4", e.seq.Next())
	log.Printf("🎬 Streaming video as %s (format %s)", filename, formatID)

	cmd := exec.CommandContext(ctx, e.cfg.YtdlpPath,
		"--no-warnings",
		"--no-post-overwrites",
		"--no-embed-subs",
		"--no-embed-chapters",
		"--no-embed-info-json",
		"-f", formatID,
		"-o", "-",
		url,
	)
	stream, err := newProcessStream("stream video", cmd)
	if err != nil {
		return nil, "", err
	}
	return stream, filename, nil
}

// StreamAudio spawns yt-dlp in audio-extraction mode with a fixed mp3
// output codec. No format-id concept applies here.
func (e *Engine) StreamAudio(ctx context.Context, url string) (*ProcessStream, string, error) {
	if !tiktok.IsVideoURL(url) {
		return nil, "", models.ErrInvalidInput
	}
	if err := e.CheckAvailability(ctx); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("tiktok_audio_%d.mp3", e.seq.Next())
	log.Printf("🎵 Streaming audio as %s", filename)

	cmd := exec.CommandContext(ctx, e.cfg.YtdlpPath,
		"-x",
		"--audio-format", "mp3",
		"--no-warnings",
		"--no-post-overwrites",
		"-o", "-",
		url,
	)
	stream, err := newProcessStream("stream audio", cmd)
	if err != nil {
		return nil, "", err
	}
	return stream, filename, nil
}

// GetProfileInfo enumerates a profile and returns its summary. The ZIP size
// estimate is a rough constant per video, not measured.
func (e *Engine) GetProfileInfo(ctx context.Context, profileURL string) (*models.ProfileInfo, error) {
	if !tiktok.IsProfileURL(profileURL) {
		return nil, models.ErrInvalidInput
	}
	if err := e.CheckAvailability(ctx); err != nil {
		return nil, err
	}

	username, ok := tiktok.ExtractUsername(profileURL)
	if !ok {
		return nil, errors.Wrap(models.ErrInvalidInput, "could not extract username")
	}

	videos, err := e.listProfileVideos(ctx, profileURL)
	if err != nil {
		return nil, err
	}

	count := len(videos)
	return &models.ProfileInfo{
		Username:                username,
		DisplayName:             "@" + username,
		VideoCount:              int64(count),
		EstimatedZipSize:        int64(count) * bytesPerVideoEstimate,
		TotalDownloadableVideos: count,
		Videos:                  videos,
	}, nil
}

// run executes yt-dlp and returns its stdout. A non-zero exit becomes a
// ProcessError carrying the captured stderr.
func (e *Engine) run(ctx context.Context, op string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, e.cfg.YtdlpPath, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			return nil, &models.ProcessError{
				Op:     op,
				Stderr: strings.TrimSpace(string(exitErr.Stderr)),
				Err:    err,
			}
		}
		return nil, errors.Wrapf(err, "running yt-dlp for %s", op)
	}
	return out, nil
}

func hasFormat(formats []models.VideoFormat, formatID string) bool {
	for _, f := range formats {
		if f.FormatID == formatID {
			return true
		}
	}
	return false
}
