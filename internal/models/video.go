package models

import (
	"time"
)

// VideoFormat: one downloadable variant of a video, as advertised by yt-dlp
type VideoFormat struct {
	FormatID string `json:"format_id"`
	Label    string `json:"label"`
	Quality  string `json:"quality"`
	Ext      string `json:"ext"`
	Filesize *int64 `json:"filesize"`
	Height   *int   `json:"height"`
	Width    *int   `json:"width"`
}

// VideoInfo: full metadata for a single video, built fresh per request
type VideoInfo struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	Author           string        `json:"author"`
	Description      string        `json:"description"`
	Duration         *int          `json:"duration"`
	ViewCount        *int64        `json:"view_count"`
	LikeCount        *int64        `json:"like_count"`
	ShareCount       *int64        `json:"share_count"`
	CommentCount     *int64        `json:"comment_count"`
	ThumbnailURL     *string       `json:"thumbnail_url"`
	VideoURL         string        `json:"video_url"`
	OriginalURL      string        `json:"original_url"`
	AvailableFormats []VideoFormat `json:"available_formats"`
	CreatedAt        time.Time     `json:"created_at"`
}

// ProfileVideo: one entry from a profile enumeration (flat listing metadata)
type ProfileVideo struct {
	URL          string   `json:"url"`
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	ThumbnailURL *string  `json:"thumbnail_url"`
	Duration     *float64 `json:"duration"`
	ViewCount    *int64   `json:"view_count"`
	UploadDate   *string  `json:"upload_date"`
}

type ProfileInfo struct {
	Username                string         `json:"username"`
	DisplayName             string         `json:"display_name"`
	VideoCount              int64          `json:"video_count"`
	EstimatedZipSize        int64          `json:"estimated_zip_size"`
	TotalDownloadableVideos int            `json:"total_downloadable_videos"`
	Videos                  []ProfileVideo `json:"videos"`
}

// --- Request / Query payloads ---

type VideoRequest struct {
	URL            string `json:"url"`
	RecaptchaToken string `json:"recaptcha_token"`
}

type DownloadRequest struct {
	URL            string `json:"url"`
	FormatID       string `json:"format_id"`
	RecaptchaToken string `json:"recaptcha_token"`
}

type ProfileDownloadRequest struct {
	ProfileURL     string `json:"profile_url"`
	RecaptchaToken string `json:"recaptcha_token"`
}

type SelectiveProfileDownloadRequest struct {
	ProfileURL        string   `json:"profile_url"`
	SelectedVideoURLs []string `json:"selected_video_urls"`
	RecaptchaToken    string   `json:"recaptcha_token"`
}

// APIError: the JSON error body every failed request gets
type APIError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
