// Package scraper implements the Scraper Client: typed fetches against
// Instagram and Twitter, classified into apperr.Kind so the Queue and
// Tracking Pipeline can make retry/re-queue/abort decisions without
// knowing anything about HTTP.
package scraper

import (
	"context"
	"time"
)

// ProfileData is the result of fetchProfile.
type ProfileData struct {
	ExternalID   string
	Username     string
	DisplayName  string
	AvatarURL    string
	Biography    string
	ExternalLink string
	Followers    int
	Following    int
	MediaCount   int
	Media        []MediaSummary
	RawPayload   string
}

// MediaSummary is the truncated, profile-embedded media list; the pipeline
// prefers ListMediaShortcodes over this because it is capped by upstream.
type MediaSummary struct {
	Shortcode string
	TakenAt   time.Time
}

// MediaData is the result of fetchMedia: full per-item detail.
type MediaData struct {
	Shortcode       string
	ViewCount       int
	LikeCount       int
	CommentCount    int
	MediaURL        string
	IsVideo         bool
	HasVideoURL     bool
	DurationSeconds int
	TakenAt         time.Time
}

// Reply is the result of fetchReplies, Twitter-only.
type Reply struct {
	ReplyTweetID string
	AuthorHandle string
	Text         string
	LikeCount    int
	RetweetCount int
	CapturedAt   time.Time
}

// Client is the capability set the Tracking Pipeline depends on. Instagram
// and Twitter each get their own implementation; both share the classifier
// in classify.go.
type Client interface {
	FetchProfile(ctx context.Context, username string) (*ProfileData, error)
	FetchMedia(ctx context.Context, shortcode string) (*MediaData, error)
	ListMediaShortcodes(ctx context.Context, username string) ([]string, error)
	FetchReplies(ctx context.Context, tweetID string) ([]Reply, error)
}
