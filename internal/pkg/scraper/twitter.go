package scraper

import (
	"context"
	"fmt"
	"time"

	"trackforge/internal/pkg/apperr"
	"trackforge/internal/pkg/cookiepool"

	json "github.com/goccy/go-json"
)

const twitterUserByScreenNameURL = "https://api.twitter.com/graphql/UserByScreenName?variables=%s"
const twitterUserTweetsURL = "https://api.twitter.com/graphql/UserTweets?variables=%s"
const twitterTweetDetailURL = "https://api.twitter.com/graphql/TweetDetail?variables=%s"

// TwitterClient implements Client against Twitter's GraphQL surface. Unlike
// Instagram, replies and tweet detail are reachable through plain
// JSON/GraphQL calls, so no browser driver is needed here.
type TwitterClient struct {
	baseClient
}

func NewTwitterClient(pool *cookiepool.Pool, timeout time.Duration) *TwitterClient {
	return &TwitterClient{baseClient: newBaseClient("twitter", pool, timeout)}
}

type twitterUserEnvelope struct {
	Data struct {
		User struct {
			Result struct {
				RestID string `json:"rest_id"`
				Legacy struct {
					Name            string `json:"name"`
					ScreenName      string `json:"screen_name"`
					Description     string `json:"description"`
					ProfileImageURL string `json:"profile_image_url_https"`
					FollowersCount  int    `json:"followers_count"`
					FriendsCount    int    `json:"friends_count"`
					StatusesCount   int    `json:"statuses_count"`
					Entities        struct {
						URL struct {
							Urls []struct {
								ExpandedURL string `json:"expanded_url"`
							} `json:"urls"`
						} `json:"url"`
					} `json:"entities"`
				} `json:"legacy"`
			} `json:"result"`
		} `json:"user"`
	} `json:"data"`
}

func (c *TwitterClient) FetchProfile(ctx context.Context, username string) (*ProfileData, error) {
	variables := fmt.Sprintf(`{"screen_name":%q}`, username)
	resp, err := c.get(ctx, fmt.Sprintf(twitterUserByScreenNameURL, variables), nil)
	if err != nil {
		return nil, err
	}

	var env twitterUserEnvelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, classifyParseErr(err)
	}

	u := env.Data.User.Result
	if u.RestID == "" {
		return nil, apperr.New(apperr.KindParse, "twitter profile response missing rest_id")
	}

	externalLink := ""
	if len(u.Legacy.Entities.URL.Urls) > 0 {
		externalLink = u.Legacy.Entities.URL.Urls[0].ExpandedURL
	}

	return &ProfileData{
		ExternalID:   u.RestID,
		Username:     u.Legacy.ScreenName,
		DisplayName:  u.Legacy.Name,
		AvatarURL:    u.Legacy.ProfileImageURL,
		Biography:    u.Legacy.Description,
		ExternalLink: externalLink,
		Followers:    u.Legacy.FollowersCount,
		Following:    u.Legacy.FriendsCount,
		MediaCount:   u.Legacy.StatusesCount,
		RawPayload:   resp.String(),
	}, nil
}

type twitterTimelineEnvelope struct {
	Data struct {
		User struct {
			Result struct {
				TimelineV2 struct {
					Timeline struct {
						Instructions []struct {
							Entries []struct {
								Content struct {
									ItemContent struct {
										TweetResults struct {
											Result struct {
												RestID string `json:"rest_id"`
												Legacy struct {
													CreatedAt string `json:"created_at"`
												} `json:"legacy"`
											} `json:"result"`
										} `json:"tweet_results"`
									} `json:"itemContent"`
								} `json:"content"`
							} `json:"entries"`
						} `json:"instructions"`
					} `json:"timeline"`
				} `json:"timeline_v2"`
			} `json:"result"`
		} `json:"user"`
	} `json:"data"`
}

// ListMediaShortcodes returns tweet IDs for the Twitter pipeline; "shortcode"
// here is a tweet ID rather than an Instagram media code, reusing one
// contract across platforms.
func (c *TwitterClient) ListMediaShortcodes(ctx context.Context, username string) ([]string, error) {
	variables := fmt.Sprintf(`{"screen_name":%q,"count":40}`, username)
	resp, err := c.get(ctx, fmt.Sprintf(twitterUserTweetsURL, variables), nil)
	if err != nil {
		return nil, err
	}

	var env twitterTimelineEnvelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, classifyParseErr(err)
	}

	var ids []string
	for _, instr := range env.Data.User.Result.TimelineV2.Timeline.Instructions {
		for _, entry := range instr.Entries {
			id := entry.Content.ItemContent.TweetResults.Result.RestID
			if id != "" {
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return nil, apperr.New(apperr.KindParse, "no tweets found in timeline response")
	}
	return ids, nil
}

type twitterTweetEnvelope struct {
	Data struct {
		TweetResult struct {
			Result struct {
				Legacy struct {
					FullText     string `json:"full_text"`
					FavoriteCount int   `json:"favorite_count"`
					RetweetCount  int   `json:"retweet_count"`
					ReplyCount    int   `json:"reply_count"`
					CreatedAt     string `json:"created_at"`
				} `json:"legacy"`
			} `json:"result"`
		} `json:"tweetResult"`
	} `json:"data"`
}

func (c *TwitterClient) FetchMedia(ctx context.Context, tweetID string) (*MediaData, error) {
	variables := fmt.Sprintf(`{"focalTweetId":%q}`, tweetID)
	resp, err := c.get(ctx, fmt.Sprintf(twitterTweetDetailURL, variables), nil)
	if err != nil {
		return nil, err
	}

	var env twitterTweetEnvelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, classifyParseErr(err)
	}

	legacy := env.Data.TweetResult.Result.Legacy
	takenAt, _ := time.Parse(time.RubyDate, legacy.CreatedAt)

	return &MediaData{
		Shortcode:    tweetID,
		ViewCount:    0,
		LikeCount:    legacy.FavoriteCount,
		CommentCount: legacy.ReplyCount,
		TakenAt:      takenAt,
	}, nil
}

func (c *TwitterClient) FetchReplies(ctx context.Context, tweetID string) ([]Reply, error) {
	variables := fmt.Sprintf(`{"focalTweetId":%q}`, tweetID)
	resp, err := c.get(ctx, fmt.Sprintf(twitterTweetDetailURL, variables), nil)
	if err != nil {
		return nil, err
	}

	var env struct {
		Data struct {
			Instructions []struct {
				Entries []struct {
					Content struct {
						ItemContent struct {
							TweetResults struct {
								Result struct {
									RestID string `json:"rest_id"`
									Legacy struct {
										FullText      string `json:"full_text"`
										FavoriteCount int    `json:"favorite_count"`
										RetweetCount  int    `json:"retweet_count"`
									} `json:"legacy"`
									Core struct {
										UserResults struct {
											Result struct {
												Legacy struct {
													ScreenName string `json:"screen_name"`
												} `json:"legacy"`
											} `json:"result"`
										} `json:"user_results"`
									} `json:"core"`
								} `json:"result"`
							} `json:"tweet_results"`
						} `json:"itemContent"`
					} `json:"content"`
				} `json:"entries"`
			} `json:"instructions"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, classifyParseErr(err)
	}

	now := time.Now().UTC()
	var replies []Reply
	for _, instr := range env.Data.Instructions {
		for _, entry := range instr.Entries {
			result := entry.Content.ItemContent.TweetResults.Result
			if result.RestID == "" || result.RestID == tweetID {
				continue
			}
			replies = append(replies, Reply{
				ReplyTweetID: result.RestID,
				AuthorHandle: result.Core.UserResults.Result.Legacy.ScreenName,
				Text:         result.Legacy.FullText,
				LikeCount:    result.Legacy.FavoriteCount,
				RetweetCount: result.Legacy.RetweetCount,
				CapturedAt:   now,
			})
		}
	}
	return replies, nil
}
