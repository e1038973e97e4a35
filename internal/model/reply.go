package model

import "time"

// Reply is a Twitter-only, read-append row: one per (TweetID, ReplyTweetID).
// No deltas are computed against it.
type Reply struct {
	ID            uint64    `gorm:"primaryKey"`
	ProfileID     uint64    `gorm:"not null;index:idx_reply_profile"`
	TweetID       string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_reply_tweet_reply,priority:1"`
	ReplyTweetID  string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_reply_tweet_reply,priority:2"`
	AuthorHandle  string    `gorm:"type:varchar(191)"`
	Text          string    `gorm:"type:text"`
	LikeCount     int       `gorm:"not null;default:0"`
	RetweetCount  int       `gorm:"not null;default:0"`
	CapturedAt    time.Time `gorm:"not null"`
	CreatedAt     time.Time
}

func (Reply) TableName() string {
	return "replies"
}
