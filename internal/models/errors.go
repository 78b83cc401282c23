package models

import (
	"errors"
	"fmt"
)

// Error taxonomy for the download pipelines. Handlers match on these with
// errors.Is / errors.As to decide the HTTP status and user-facing message.
var (
	ErrInvalidInput          = errors.New("invalid or unsupported TikTok URL")
	ErrInvalidFormat         = errors.New("requested format is not available")
	ErrDependencyUnavailable = errors.New("yt-dlp is not installed or not working")
	ErrNoVideosDownloaded    = errors.New("no videos were downloaded")
	ErrBatchDownloadFailed   = errors.New("profile download failed")
	ErrArchiveBuild          = errors.New("archive build failed")
)

// ProcessError: yt-dlp exited non-zero. Carries the captured stderr so the
// operator can see what the tool complained about; handlers never echo it
// to clients verbatim.
type ProcessError struct {
	Op     string // which invocation failed ("video info", "stream video", ...)
	Stderr string
	Err    error
}

func (e *ProcessError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("yt-dlp %s failed: %s", e.Op, e.Stderr)
	}
	return fmt.Sprintf("yt-dlp %s failed: %v", e.Op, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}
