package scraper

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"trackforge/internal/pkg/apperr"
	"trackforge/internal/pkg/cookiepool"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	json "github.com/goccy/go-json"
)

const instagramProfileURL = "https://www.instagram.com/api/v1/users/web_profile_info/?username=%s"
const instagramMediaURL = "https://www.instagram.com/p/%s/?__a=1&__d=dis"

// InstagramClient implements Client against Instagram's profile and media
// surfaces. JSON/GraphQL reads go through resty; the current media list
// needs a headless browser to execute the page's lazy-loaded script tags,
// so ListMediaShortcodes drives chromedp directly.
type InstagramClient struct {
	baseClient
	browserCtx context.Context
	cancel     context.CancelFunc
}

func NewInstagramClient(pool *cookiepool.Pool, timeout time.Duration) *InstagramClient {
	ua := "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(ua),
	)
	allocCtx, _ := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	return &InstagramClient{
		baseClient: newBaseClient("instagram", pool, timeout),
		browserCtx: browserCtx,
		cancel:     cancel,
	}
}

func (c *InstagramClient) Close() {
	c.cancel()
}

type instagramProfileEnvelope struct {
	Data struct {
		User struct {
			ID               string `json:"id"`
			Username         string `json:"username"`
			FullName         string `json:"full_name"`
			Biography        string `json:"biography"`
			ExternalURL      string `json:"external_url"`
			ProfilePicURLHD  string `json:"profile_pic_url_hd"`
			EdgeFollowedBy   struct{ Count int `json:"count"` } `json:"edge_followed_by"`
			EdgeFollow       struct{ Count int `json:"count"` } `json:"edge_follow"`
			EdgeOwnerToTimeline struct {
				Count int `json:"count"`
				Edges []struct {
					Node struct {
						Shortcode string `json:"shortcode"`
						TakenAt   int64  `json:"taken_at_timestamp"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"edge_owner_to_timeline_media"`
		} `json:"user"`
	} `json:"data"`
}

func (c *InstagramClient) FetchProfile(ctx context.Context, username string) (*ProfileData, error) {
	resp, err := c.get(ctx, fmt.Sprintf(instagramProfileURL, username), map[string]string{
		"X-IG-App-ID": "936619743392459",
	})
	if err != nil {
		return nil, err
	}

	var env instagramProfileEnvelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, classifyParseErr(err)
	}

	u := env.Data.User
	if u.Username == "" {
		return nil, apperr.New(apperr.KindParse, "profile response missing user node")
	}

	media := make([]MediaSummary, 0, len(u.EdgeOwnerToTimeline.Edges))
	for _, e := range u.EdgeOwnerToTimeline.Edges {
		media = append(media, MediaSummary{
			Shortcode: e.Node.Shortcode,
			TakenAt:   time.Unix(e.Node.TakenAt, 0).UTC(),
		})
	}

	return &ProfileData{
		ExternalID:   u.ID,
		Username:     u.Username,
		DisplayName:  u.FullName,
		AvatarURL:    u.ProfilePicURLHD,
		Biography:    u.Biography,
		ExternalLink: u.ExternalURL,
		Followers:    u.EdgeFollowedBy.Count,
		Following:    u.EdgeFollow.Count,
		MediaCount:   u.EdgeOwnerToTimeline.Count,
		Media:        media,
		RawPayload:   resp.String(),
	}, nil
}

type instagramMediaEnvelope struct {
	Items []struct {
		Code         string `json:"code"`
		TakenAt      int64  `json:"taken_at"`
		ViewCount    int    `json:"view_count"`
		PlayCount    int    `json:"play_count"`
		CommentCount int    `json:"comment_count"`
		IsVideo      bool   `json:"is_video"`
		VideoDuration float64 `json:"video_duration"`
		VideoVersions []struct {
			URL string `json:"url"`
		} `json:"video_versions"`
		ImageVersions2 struct {
			Candidates []struct {
				URL string `json:"url"`
			} `json:"candidates"`
		} `json:"image_versions2"`
		EdgeLikedBy struct{ Count int `json:"count"` } `json:"like_count"`
	} `json:"items"`
}

func (c *InstagramClient) FetchMedia(ctx context.Context, shortcode string) (*MediaData, error) {
	resp, err := c.get(ctx, fmt.Sprintf(instagramMediaURL, shortcode), nil)
	if err != nil {
		return nil, err
	}

	var env instagramMediaEnvelope
	if jsonErr := json.Unmarshal(resp.Body(), &env); jsonErr != nil || len(env.Items) == 0 {
		doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
		if docErr != nil {
			return nil, classifyParseErr(jsonErr)
		}
		return parseMediaFromHTML(shortcode, doc)
	}

	item := env.Items[0]
	views := item.ViewCount
	if item.PlayCount > views {
		views = item.PlayCount
	}
	mediaURL := ""
	hasVideo := len(item.VideoVersions) > 0
	if hasVideo {
		mediaURL = item.VideoVersions[0].URL
	} else if len(item.ImageVersions2.Candidates) > 0 {
		mediaURL = item.ImageVersions2.Candidates[0].URL
	}

	return &MediaData{
		Shortcode:       shortcode,
		ViewCount:       views,
		LikeCount:       item.EdgeLikedBy.Count,
		CommentCount:    item.CommentCount,
		MediaURL:        mediaURL,
		IsVideo:         item.IsVideo,
		HasVideoURL:     hasVideo,
		DurationSeconds: int(item.VideoDuration),
		TakenAt:         time.Unix(item.TakenAt, 0).UTC(),
	}, nil
}

// ListMediaShortcodes drives a headless browser to the profile grid and
// collects the post and reel links present once the page is ready. It does
// not scroll, so only the grid's initial render is read, and the pool's
// credential is only checked for presence; it is not attached to the
// browser session. It is the preferred enumeration path; FetchProfile's
// Media field is only a fallback.
func (c *InstagramClient) ListMediaShortcodes(ctx context.Context, username string) ([]string, error) {
	tabCtx, cancel := chromedp.NewContext(c.browserCtx)
	defer cancel()

	cred := c.pool.Current()
	if cred == nil {
		return nil, apperr.New(apperr.KindAuthFailed, "no usable credential in pool")
	}

	var hrefs []string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(fmt.Sprintf("https://www.instagram.com/%s/", username)),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(`Array.from(document.querySelectorAll('a[href*="/p/"], a[href*="/reel/"]')).map(a => a.getAttribute('href'))`, &hrefs),
	)
	if err != nil {
		return nil, classifyTransportErr(err)
	}

	codes := make(map[string]struct{})
	var out []string
	for _, href := range hrefs {
		code := extractShortcode(href)
		if code == "" {
			continue
		}
		if _, seen := codes[code]; seen {
			continue
		}
		codes[code] = struct{}{}
		out = append(out, code)
	}
	if len(out) == 0 {
		return nil, apperr.New(apperr.KindParse, "no shortcodes found in profile grid")
	}
	c.pool.MarkSuccess(ctx)
	return out, nil
}

func (c *InstagramClient) FetchReplies(ctx context.Context, tweetID string) ([]Reply, error) {
	return nil, apperr.New(apperr.KindFatal, "fetchReplies is not supported on the Instagram client")
}

func extractShortcode(href string) string {
	for _, marker := range []string{"/p/", "/reel/"} {
		if idx := strings.Index(href, marker); idx >= 0 {
			rest := href[idx+len(marker):]
			if end := strings.Index(rest, "/"); end >= 0 {
				return rest[:end]
			}
			return rest
		}
	}
	return ""
}

func parseMediaFromHTML(shortcode string, doc *goquery.Document) (*MediaData, error) {
	likeText := doc.Find(`meta[property="og:description"]`).AttrOr("content", "")
	likes, _ := strconv.Atoi(digitsOnly(likeText))
	return &MediaData{Shortcode: shortcode, LikeCount: likes}, nil
}

// digitsOnly strips everything but ASCII digits, used to pull a rough like
// count out of the og:description fallback text when the JSON payload
// doesn't parse.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
