package adapters

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

// Post is the standardized social media post shape. All adapters convert
// platform-specific records into this format; the pipeline only reads Text.
type Post struct {
	ID             string          `json:"id"`
	Text           string          `json:"text"`
	AuthorID       string          `json:"author_id"`
	AuthorUsername string          `json:"author_username"`
	CreatedAt      time.Time       `json:"created_at"`
	Likes          int             `json:"likes"`
	Retweets       int             `json:"retweets"`
	Replies        int             `json:"replies"`
	Language       string          `json:"language,omitempty"`
	Hashtags       []string        `json:"hashtags"`
	Mentions       []string        `json:"mentions"`
	URLs           []string        `json:"urls"`
	Raw            json.RawMessage `json:"-"`
}

// FetchOptions narrows a post search.
type FetchOptions struct {
	MaxResults int
	StartTime  time.Time
	EndTime    time.Time
}

// Adapter is the capability set every social platform integration provides.
// FetchPosts must return an empty slice (not an error) for ordinary
// "no results" conditions.
type Adapter interface {
	FetchPosts(ctx context.Context, query string, opts FetchOptions) ([]Post, error)
	NormalizePost(raw json.RawMessage) (Post, error)
	ValidateCredentials(ctx context.Context) bool
	PlatformName() string
}

var (
	hashtagPattern = regexp.MustCompile(`#(\w+)`)
	mentionPattern = regexp.MustCompile(`@(\w+)`)
	urlPattern     = regexp.MustCompile(`http[s]?://[^\s]+`)
)

// ExtractHashtags returns the lowercase hashtags in text, without the marker.
func ExtractHashtags(text string) []string {
	var tags []string
	for _, m := range hashtagPattern.FindAllStringSubmatch(text, -1) {
		tags = append(tags, strings.ToLower(m[1]))
	}
	return tags
}

// ExtractMentions returns the lowercase mentioned usernames, without the marker.
func ExtractMentions(text string) []string {
	var mentions []string
	for _, m := range mentionPattern.FindAllStringSubmatch(text, -1) {
		mentions = append(mentions, strings.ToLower(m[1]))
	}
	return mentions
}

// ExtractURLs returns the URLs in text.
func ExtractURLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}
