package repository

import (
	"context"

	"trackforge/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReplyRepo interface {
	Upsert(ctx context.Context, reply *model.Reply) error
	ListForTweet(ctx context.Context, tweetID string) ([]*model.Reply, error)
}

type replyRepoImpl struct {
	db *gorm.DB
}

func NewReplyRepo(db *gorm.DB) ReplyRepo {
	return &replyRepoImpl{db: db}
}

// Upsert writes a reply keyed on (tweet_id, reply_tweet_id): read-append,
// no deltas, so re-observing the same reply just refreshes it.
func (r *replyRepoImpl) Upsert(ctx context.Context, reply *model.Reply) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tweet_id"}, {Name: "reply_tweet_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"author_handle", "text", "like_count", "retweet_count", "captured_at"}),
	}).Create(reply).Error
}

func (r *replyRepoImpl) ListForTweet(ctx context.Context, tweetID string) ([]*model.Reply, error) {
	var replies []*model.Reply
	err := r.db.WithContext(ctx).Where("tweet_id = ?", tweetID).Find(&replies).Error
	return replies, err
}
