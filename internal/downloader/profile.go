package downloader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/abdelghafour1223/tiktok-downloder/internal/models"
)

// fullListingCap bounds the second enumeration strategy; full metadata dumps
// are slow, one subprocess resolution per video.
const fullListingCap = 50

// maxMetadataLine accommodates yt-dlp JSON lines, which routinely exceed
// bufio.Scanner's default 64 KiB token limit.
const maxMetadataLine = 4 * 1024 * 1024

// enumerationStrategy is one way of listing a profile's videos. Strategies
// are tried in order until one yields at least one entry, so a new tier can
// be appended without touching the existing ones.
type enumerationStrategy struct {
	name string
	run  func(ctx context.Context, profileURL string) ([]models.ProfileVideo, error)
}

// listProfileVideos walks the strategy chain. Flat listings are cheap but
// sometimes omit thumbnails entirely for TikTok, hence the capped
// full-metadata fallback.
func (e *Engine) listProfileVideos(ctx context.Context, profileURL string) ([]models.ProfileVideo, error) {
	strategies := []enumerationStrategy{
		{name: "flat-playlist", run: e.listVideosFlat},
		{name: "full-metadata", run: e.listVideosFull},
	}

	var firstErr error
	for _, s := range strategies {
		videos, err := s.run(ctx, profileURL)
		if err != nil {
			log.Printf("⚠️ Enumeration strategy %s failed: %v", s.name, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if len(videos) > 0 {
			log.Printf("📋 Strategy %s found %d videos", s.name, len(videos))
			return videos, nil
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return []models.ProfileVideo{}, nil
}

func (e *Engine) listVideosFlat(ctx context.Context, profileURL string) ([]models.ProfileVideo, error) {
	out, err := e.run(ctx, "profile listing",
		"--dump-json", "--flat-playlist", "--no-warnings", "--no-download", profileURL)
	if err != nil {
		return nil, err
	}
	return parseProfileEntries(out, 0), nil
}

func (e *Engine) listVideosFull(ctx context.Context, profileURL string) ([]models.ProfileVideo, error) {
	out, err := e.run(ctx, "profile listing (full)",
		"--dump-json", "--no-download", "--no-warnings",
		"--playlist-end", fmt.Sprint(fullListingCap), profileURL)
	if err != nil {
		return nil, err
	}
	return parseProfileEntries(out, fullListingCap), nil
}

// parseProfileEntries reads one JSON record per line. A malformed line is
// logged and skipped; partial metadata never aborts the batch.
func parseProfileEntries(out []byte, limit int) []models.ProfileVideo {
	videos := []models.ProfileVideo{}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), maxMetadataLine)

	index := 0
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		index++

		var entry ytdlpVideo
		if err := json.Unmarshal(line, &entry); err != nil {
			log.Printf("⚠️ Skipping unparsable profile entry: %v", err)
			continue
		}

		url := entry.WebpageURL
		if url == "" {
			url = entry.URL
		}
		title := entry.Title
		if title == "" {
			title = fmt.Sprintf("TikTok Video #%d", index)
		}

		var uploadDate *string
		if entry.UploadDate != "" {
			d := entry.UploadDate
			uploadDate = &d
		}

		videos = append(videos, models.ProfileVideo{
			URL:          url,
			ID:           entry.ID,
			Title:        title,
			ThumbnailURL: bestThumbnailURL(entry.Thumbnails, entry.Thumbnail),
			Duration:     entry.Duration,
			ViewCount:    entry.ViewCount,
			UploadDate:   uploadDate,
		})

		if limit > 0 && len(videos) >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("⚠️ Profile listing truncated: %v", err)
	}

	return videos
}
