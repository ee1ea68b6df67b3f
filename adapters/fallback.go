package adapters

import (
	"fmt"
	"time"
)

// GeneratePosts deterministically produces count synthetic posts for a topic.
// The post texts cycle through three fixed templates, so the same topic and
// count always yield the same dataset. Used whenever a real adapter is
// unavailable, misconfigured or failing, so the pipeline never stalls on an
// unreachable upstream.
func GeneratePosts(topic string, count int) []Post {
	now := time.Now()
	posts := make([]Post, 0, count)

	for i := 0; i < count; i++ {
		var text string
		switch i % 3 {
		case 0:
			text = fmt.Sprintf("%s is amazing for developers #%d", topic, i)
		case 1:
			text = fmt.Sprintf("I am unsure about %s future #%d", topic, i)
		default:
			text = fmt.Sprintf("%s is overhyped and risky #%d", topic, i)
		}

		posts = append(posts, Post{
			ID:             fmt.Sprintf("synthetic_%d", i),
			Text:           text,
			AuthorID:       fmt.Sprintf("user_%d", i%10),
			AuthorUsername: fmt.Sprintf("user%d", i%10),
			CreatedAt:      now,
			Likes:          100 * (count - i) / count,
			Retweets:       50 * (count - i) / count,
			Replies:        20 * (count - i) / count,
			Language:       "en",
			Hashtags:       ExtractHashtags(text),
			Mentions:       ExtractMentions(text),
			URLs:           ExtractURLs(text),
		})
	}

	return posts
}
