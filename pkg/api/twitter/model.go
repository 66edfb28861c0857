package twitter

import "time"

type User struct {
	ID             string
	Name           string
	ScreenName     string
	FollowersCount int
}

type Tweet struct {
	ID        string
	AuthorID  string
	Text      string
	CreatedAt time.Time
}

// Comment is a reply found under a tweet's conversation.
type Comment struct {
	AuthorID string `mapstructure:"author_id" json:"author_id"`
	Text     string `mapstructure:"text" json:"text"`
}

// CommentPage is one page of a resumable comments query. A non-empty
// NextCursor means more pages follow; RateLimited reports that the API
// refused to serve the next page for now.
type CommentPage struct {
	Comments    []Comment
	NextCursor  string
	RateLimited bool
}

type ActorPage struct {
	ActorIDs    []string
	NextCursor  string
	RateLimited bool
}
