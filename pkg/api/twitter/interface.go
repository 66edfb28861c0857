package twitter

import (
	"context"
	"time"
)

type IEndpoint interface {
	GetTweet(ctx context.Context, postURL string) (Tweet, error)
	GetUser(ctx context.Context, screenName string) (User, error)

	// Paged queries. Pass the cursor of the previous page to continue, or an
	// empty cursor to start over.
	Comments(ctx context.Context, postURL, cursor string) (CommentPage, error)
	LikedBy(ctx context.Context, postURL, cursor string) (ActorPage, error)
	RetweetedBy(ctx context.Context, postURL, cursor string) (ActorPage, error)
	FollowedBy(ctx context.Context, screenName, cursor string) (ActorPage, error)
	SearchedBy(ctx context.Context, content string, since time.Time, cursor string) (ActorPage, error)

	// BotScore returns the automation score of an account in [0, 1].
	BotScore(ctx context.Context, actorID string) (float64, error)
}
