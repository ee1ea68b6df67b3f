package adapters

import (
	"analytics-api-go/logcolors"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const twitterDefaultBaseURL = "https://api.twitter.com/2"

func init() {
	Register("twitter", func(creds Credentials) Adapter { return NewTwitterAdapter(creds) })
	// "x" is an alias for the same platform
	Register("x", func(creds Credentials) Adapter { return NewTwitterAdapter(creds) })
}

// TwitterAdapter fetches tweets via the Twitter API v2 recent search endpoint.
type TwitterAdapter struct {
	BaseURL     string
	bearerToken string
	client      *http.Client
}

func NewTwitterAdapter(creds Credentials) *TwitterAdapter {
	return &TwitterAdapter{
		BaseURL:     twitterDefaultBaseURL,
		bearerToken: creds.BearerToken,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

// twitterSearchResponse is the subset of the v2 search response we read.
type twitterSearchResponse struct {
	Data   []json.RawMessage `json:"data"`
	Errors []struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

func (a *TwitterAdapter) FetchPosts(ctx context.Context, query string, opts FetchOptions) ([]Post, error) {
	if a.bearerToken == "" {
		return nil, &FetchError{Platform: a.PlatformName(), Kind: KindNoCredentials}
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 || maxResults > 100 {
		maxResults = 100 // API limit per page
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("tweet.fields", "created_at,public_metrics,lang,entities")
	params.Set("user.fields", "username")
	params.Set("expansions", "author_id")
	if !opts.StartTime.IsZero() {
		params.Set("start_time", opts.StartTime.UTC().Format(time.RFC3339))
	}
	if !opts.EndTime.IsZero() {
		params.Set("end_time", opts.EndTime.UTC().Format(time.RFC3339))
	}

	endpoint := a.BaseURL + "/tweets/search/recent?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Platform: a.PlatformName(), Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+a.bearerToken)
	req.Header.Set("Content-Type", "application/json")

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
		return nil, &FetchError{
			Platform: a.PlatformName(),
			Kind:     KindUpstream,
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var search twitterSearchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, &FetchError{Platform: a.PlatformName(), Kind: KindUpstream, Err: err}
	}

	if len(search.Errors) > 0 && len(search.Data) == 0 {
		return nil, &FetchError{
			Platform: a.PlatformName(),
			Kind:     KindUpstream,
			Err:      fmt.Errorf("API error: %s", search.Errors[0].Title),
		}
	}

	posts := make([]Post, 0, len(search.Data))
	for _, raw := range search.Data {
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

// twitterTweet is the raw Twitter API v2 tweet shape.
type twitterTweet struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	AuthorID      string `json:"author_id"`
	Username      string `json:"username"`
	CreatedAt     string `json:"created_at"`
	Lang          string `json:"lang"`
	PublicMetrics struct {
		LikeCount    int `json:"like_count"`
		RetweetCount int `json:"retweet_count"`
		ReplyCount   int `json:"reply_count"`
	} `json:"public_metrics"`
	Entities struct {
		Hashtags []struct {
			Tag string `json:"tag"`
		} `json:"hashtags"`
		Mentions []struct {
			Username string `json:"username"`
		} `json:"mentions"`
		URLs []struct {
			URL         string `json:"url"`
			ExpandedURL string `json:"expanded_url"`
		} `json:"urls"`
	} `json:"entities"`
}

func (a *TwitterAdapter) NormalizePost(raw json.RawMessage) (Post, error) {
	var tweet twitterTweet
	if err := json.Unmarshal(raw, &tweet); err != nil {
		return Post{}, err
	}
	if tweet.ID == "" {
		return Post{}, fmt.Errorf("tweet has no id")
	}

	createdAt, err := time.Parse(time.RFC3339, tweet.CreatedAt)
	if err != nil {
		createdAt = time.Time{}
	}

	var hashtags []string
	for _, h := range tweet.Entities.Hashtags {
		hashtags = append(hashtags, strings.ToLower(h.Tag))
	}
	var mentions []string
	for _, m := range tweet.Entities.Mentions {
		mentions = append(mentions, strings.ToLower(m.Username))
	}
	var urls []string
	for _, u := range tweet.Entities.URLs {
		if u.ExpandedURL != "" {
			urls = append(urls, u.ExpandedURL)
		} else {
			urls = append(urls, u.URL)
		}
	}

	username := tweet.Username
	if username == "" {
		username = "unknown"
	}

	return Post{
		ID:             tweet.ID,
		Text:           tweet.Text,
		AuthorID:       tweet.AuthorID,
		AuthorUsername: username,
		CreatedAt:      createdAt,
		Likes:          tweet.PublicMetrics.LikeCount,
		Retweets:       tweet.PublicMetrics.RetweetCount,
		Replies:        tweet.PublicMetrics.ReplyCount,
		Language:       tweet.Lang,
		Hashtags:       hashtags,
		Mentions:       mentions,
		URLs:           urls,
		Raw:            raw,
	}, nil
}

func (a *TwitterAdapter) ValidateCredentials(ctx context.Context) bool {
	return a.bearerToken != ""
}

func (a *TwitterAdapter) PlatformName() string {
	return "twitter"
}

// BuildQuery assembles a Twitter search query with advanced operators, e.g.
// BuildQuery([]string{"AI"}, []string{"tech"}, nil, true, "en") returns
// "(AI) #tech -is:retweet lang:en".
func BuildQuery(keywords, hashtags, mentions []string, excludeRetweets bool, language string) string {
	var parts []string

	if len(keywords) > 0 {
		parts = append(parts, "("+strings.Join(keywords, " OR ")+")")
	}
	for _, tag := range hashtags {
		parts = append(parts, "#"+tag)
	}
	for _, mention := range mentions {
		parts = append(parts, "@"+mention)
	}
	if excludeRetweets {
		parts = append(parts, "-is:retweet")
	}
	if language != "" {
		parts = append(parts, "lang:"+language)
	}

	return strings.Join(parts, " ")
}
