package downloader

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/abdelghafour1223/tiktok-downloder/internal/models"
)

// Raw shapes of yt-dlp's --dump-json output. Only the fields we read.
type ytdlpThumbnail struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type ytdlpFormat struct {
	FormatID   string  `json:"format_id"`
	Ext        string  `json:"ext"`
	Quality    float64 `json:"quality"`
	Height     *int    `json:"height"`
	Width      *int    `json:"width"`
	Filesize   *int64  `json:"filesize"`
	URL        string  `json:"url"`
	Vcodec     string  `json:"vcodec"`
	FormatNote string  `json:"format_note"`
}

type ytdlpVideo struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Uploader     string           `json:"uploader"`
	UploaderID   string           `json:"uploader_id"`
	Duration     *float64         `json:"duration"`
	ViewCount    *int64           `json:"view_count"`
	LikeCount    *int64           `json:"like_count"`
	CommentCount *int64           `json:"comment_count"`
	Thumbnail    string           `json:"thumbnail"` // legacy single field
	Thumbnails   []ytdlpThumbnail `json:"thumbnails"`
	URL          string           `json:"url"`
	WebpageURL   string           `json:"webpage_url"`
	UploadDate   string           `json:"upload_date"`
	Formats      []ytdlpFormat    `json:"formats"`
}

// buildVideoInfo converts one raw yt-dlp record into the API shape.
func buildVideoInfo(raw *ytdlpVideo, originalURL string) *models.VideoInfo {
	title := raw.Title
	if title == "" {
		title = "Untitled"
	}
	author := raw.UploaderID
	if author == "" {
		author = "unknown"
	}

	var duration *int
	if raw.Duration != nil {
		d := int(*raw.Duration)
		duration = &d
	}

	return &models.VideoInfo{
		ID:               raw.ID,
		Title:            title,
		Author:           author,
		Description:      raw.Description,
		Duration:         duration,
		ViewCount:        raw.ViewCount,
		LikeCount:        raw.LikeCount,
		ShareCount:       nil,
		CommentCount:     raw.CommentCount,
		ThumbnailURL:     bestThumbnailURL(raw.Thumbnails, raw.Thumbnail),
		VideoURL:         bestPlayableURL(raw.Formats),
		OriginalURL:      originalURL,
		AvailableFormats: parseAvailableFormats(raw.Formats),
		CreatedAt:        parseUploadDate(raw.UploadDate),
	}
}

// bestThumbnailURL picks a thumbnail in strict priority order: the "cover"
// entry, then the largest by area, then the first, then the legacy single
// field. The upstream schema has shipped both shapes; we tolerate both.
func bestThumbnailURL(thumbnails []ytdlpThumbnail, fallback string) *string {
	if len(thumbnails) > 0 {
		for _, t := range thumbnails {
			if strings.Contains(t.ID, "cover") {
				url := t.URL
				return &url
			}
		}

		best := thumbnails[0]
		for _, t := range thumbnails[1:] {
			if t.Height*t.Width > best.Height*best.Width {
				best = t
			}
		}
		url := best.URL
		return &url
	}

	if fallback != "" {
		url := fallback
		return &url
	}
	return nil
}

// bestPlayableURL returns the direct URL of the highest-quality mp4 format,
// for display purposes only.
func bestPlayableURL(formats []ytdlpFormat) string {
	var best *ytdlpFormat
	for i := range formats {
		f := &formats[i]
		if f.Ext != "mp4" || f.URL == "" {
			continue
		}
		if best == nil || f.Quality > best.Quality {
			best = f
		}
	}
	if best == nil {
		return ""
	}
	return best.URL
}

// parseAvailableFormats filters the raw list down to the formats we offer:
// mp4 with a real video track and at least 240p, labeled, sorted by height
// descending, deduplicated by height, capped at 5 entries. An empty result
// is replaced by a single "best" fallback so the client always has a choice.
func parseAvailableFormats(formats []ytdlpFormat) []models.VideoFormat {
	var available []models.VideoFormat
	for _, f := range formats {
		if f.Ext != "mp4" || f.Height == nil {
			continue
		}
		if f.Vcodec == "none" {
			continue
		}
		height := *f.Height
		if height < 240 {
			continue
		}

		label := qualityLabel(height)
		if f.FormatNote != "" {
			label = fmt.Sprintf("%s - %s", label, f.FormatNote)
		}

		available = append(available, models.VideoFormat{
			FormatID: f.FormatID,
			Label:    label,
			Quality:  fmt.Sprintf("%dp", height),
			Ext:      f.Ext,
			Filesize: f.Filesize,
			Height:   f.Height,
			Width:    f.Width,
		})
	}

	sort.SliceStable(available, func(i, j int) bool {
		return *available[i].Height > *available[j].Height
	})

	deduped := available[:0]
	for _, f := range available {
		if len(deduped) > 0 && *deduped[len(deduped)-1].Height == *f.Height {
			continue
		}
		deduped = append(deduped, f)
	}
	available = deduped

	if len(available) > 5 {
		available = available[:5]
	}

	if len(available) == 0 {
		available = []models.VideoFormat{{
			FormatID: "best",
			Label:    "Best Available",
			Quality:  "auto",
			Ext:      "mp4",
		}}
	}

	return available
}

func qualityLabel(height int) string {
	switch {
	case height >= 1080:
		return "1080p (HD)"
	case height >= 720:
		return "720p (HD)"
	case height >= 480:
		return "480p"
	default:
		return "360p"
	}
}

// parseUploadDate handles yt-dlp's fixed YYYYMMDD contract. Absent or
// malformed dates fall back to now; metadata completeness is best-effort.
func parseUploadDate(s string) time.Time {
	if len(s) == 8 {
		if t, err := time.Parse("20060102", s); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}
