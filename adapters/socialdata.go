package adapters

import (
	"analytics-api-go/logcolors"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const socialDataDefaultBaseURL = "https://api.socialdata.tools/twitter"

// socialDataTimeLayout matches the legacy Twitter timestamp format SocialData
// returns, e.g. "Wed Sep 01 12:00:00 +0000 2021".
const socialDataTimeLayout = "Mon Jan 02 15:04:05 -0700 2006"

func init() {
	Register("socialdata", func(creds Credentials) Adapter { return NewSocialDataAdapter(creds) })
}

// SocialDataAdapter fetches tweets via the SocialData.tools search API, a
// cost-effective alternative to the official endpoint.
type SocialDataAdapter struct {
	BaseURL string
	apiKey  string
	client  *http.Client
}

func NewSocialDataAdapter(creds Credentials) *SocialDataAdapter {
	key := creds.APIKey
	if key == "" {
		key = creds.BearerToken
	}
	return &SocialDataAdapter{
		BaseURL: socialDataDefaultBaseURL,
		apiKey:  key,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type socialDataSearchResponse struct {
	Tweets []json.RawMessage `json:"tweets"`
}

func (a *SocialDataAdapter) FetchPosts(ctx context.Context, query string, opts FetchOptions) ([]Post, error) {
	if a.apiKey == "" {
		return nil, &FetchError{Platform: a.PlatformName(), Kind: KindNoCredentials}
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("type", "Latest")

	endpoint := strings.TrimSuffix(a.BaseURL, "/") + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Platform: a.PlatformName(), Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &FetchError{Platform: a.PlatformName(), Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Platform: a.PlatformName(), Kind: KindNetwork, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		kind := KindUpstream
		if strings.Contains(string(body), "Deprecated") {
			kind = KindDeprecated
		}
		return nil, &FetchError{
			Platform: a.PlatformName(),
			Kind:     kind,
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var search socialDataSearchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, &FetchError{Platform: a.PlatformName(), Kind: KindUpstream, Err: err}
	}

	raws := search.Tweets
	if opts.MaxResults > 0 && len(raws) > opts.MaxResults {
		raws = raws[:opts.MaxResults]
	}

	posts := make([]Post, 0, len(raws))
	for _, raw := range raws {
		post, err := a.NormalizePost(raw)
		if err != nil {
			log.Warnf("%s Skipping unparseable tweet: %v", logcolors.AdapterPrefix(a.PlatformName()), err)
			continue
		}
		posts = append(posts, post)
	}

	log.Infof("%s Fetched %d posts for query %q", logcolors.AdapterPrefix(a.PlatformName()), len(posts), query)
	return posts, nil
}

// socialDataTweet is the raw SocialData.tools tweet shape (legacy Twitter
// JSON: id_str, full_text, nested user record).
type socialDataTweet struct {
	IDStr         string `json:"id_str"`
	FullText      string `json:"full_text"`
	Text          string `json:"text"`
	CreatedAt     string `json:"created_at"`
	Lang          string `json:"lang"`
	FavoriteCount int    `json:"favorite_count"`
	RetweetCount  int    `json:"retweet_count"`
	ReplyCount    int    `json:"reply_count"`
	User          struct {
		IDStr      string `json:"id_str"`
		ScreenName string `json:"screen_name"`
	} `json:"user"`
	Entities struct {
		Hashtags []struct {
			Text string `json:"text"`
		} `json:"hashtags"`
		UserMentions []struct {
			ScreenName string `json:"screen_name"`
		} `json:"user_mentions"`
		URLs []struct {
			ExpandedURL string `json:"expanded_url"`
		} `json:"urls"`
	} `json:"entities"`
}

func (a *SocialDataAdapter) NormalizePost(raw json.RawMessage) (Post, error) {
	var tweet socialDataTweet
	if err := json.Unmarshal(raw, &tweet); err != nil {
		return Post{}, err
	}
	if tweet.IDStr == "" {
		return Post{}, fmt.Errorf("tweet has no id_str")
	}

	text := tweet.FullText
	if text == "" {
		text = tweet.Text
	}

	createdAt, err := time.Parse(socialDataTimeLayout, tweet.CreatedAt)
	if err != nil {
		createdAt = time.Time{}
	}

	var hashtags []string
	for _, h := range tweet.Entities.Hashtags {
		hashtags = append(hashtags, strings.ToLower(h.Text))
	}
	var mentions []string
	for _, m := range tweet.Entities.UserMentions {
		mentions = append(mentions, strings.ToLower(m.ScreenName))
	}
	var urls []string
	for _, u := range tweet.Entities.URLs {
		urls = append(urls, u.ExpandedURL)
	}

	username := tweet.User.ScreenName
	if username == "" {
		username = "unknown"
	}

	return Post{
		ID:             tweet.IDStr,
		Text:           text,
		AuthorID:       tweet.User.IDStr,
		AuthorUsername: username,
		CreatedAt:      createdAt,
		Likes:          tweet.FavoriteCount,
		Retweets:       tweet.RetweetCount,
		Replies:        tweet.ReplyCount,
		Language:       tweet.Lang,
		Hashtags:       hashtags,
		Mentions:       mentions,
		URLs:           urls,
		Raw:            raw,
	}, nil
}

func (a *SocialDataAdapter) ValidateCredentials(ctx context.Context) bool {
	return a.apiKey != ""
}

func (a *SocialDataAdapter) PlatformName() string {
	return "socialdata"
}
