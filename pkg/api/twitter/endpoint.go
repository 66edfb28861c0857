package twitter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/VAIOT/lottery-backend/config"
	"github.com/VAIOT/lottery-backend/pkg/api"
	"github.com/VAIOT/lottery-backend/pkg/xcontext"
	"github.com/mitchellh/mapstructure"
)

type Endpoint struct {
	appAccessToken string
	apiGenerator   api.Generator
}

func New(cfg config.TwitterConfigs) *Endpoint {
	return &Endpoint{
		appAccessToken: cfg.AppAccessToken,
		apiGenerator:   api.NewGenerator(cfg.APIEndpoints...),
	}
}

func (e *Endpoint) GetTweet(ctx context.Context, postURL string) (Tweet, error) {
	postID, err := ParsePostID(postURL)
	if err != nil {
		return Tweet{}, err
	}

	resp, err := e.apiGenerator.New("/get_tweet").
		Query(api.Parameter{"tweet_id": postID}).
		GET(ctx, api.OAuth2("Bearer", e.appAccessToken))
	if err != nil {
		return Tweet{}, err
	}

	body, err := checkResponse(ctx, resp)
	if err != nil {
		return Tweet{}, err
	}

	var raw struct {
		ID        string `mapstructure:"id"`
		AuthorID  string `mapstructure:"author_id"`
		Text      string `mapstructure:"text"`
		CreatedAt string `mapstructure:"created_at"`
	}
	if err := mapstructure.Decode(map[string]any(body), &raw); err != nil {
		return Tweet{}, err
	}

	if raw.ID == "" {
		return Tweet{}, errors.New("cannot get tweet info")
	}

	tweet := Tweet{ID: raw.ID, AuthorID: raw.AuthorID, Text: raw.Text}
	if raw.CreatedAt != "" {
		createdAt, err := time.Parse(time.RFC3339, raw.CreatedAt)
		if err != nil {
			return Tweet{}, err
		}
		tweet.CreatedAt = createdAt
	}

	return tweet, nil
}

func (e *Endpoint) GetUser(ctx context.Context, screenName string) (User, error) {
	resp, err := e.apiGenerator.New("/get_user").
		Query(api.Parameter{"handle": trimHandle(screenName)}).
		GET(ctx, api.OAuth2("Bearer", e.appAccessToken))
	if err != nil {
		return User{}, err
	}

	body, err := checkResponse(ctx, resp)
	if err != nil {
		return User{}, err
	}

	var raw struct {
		ID             string `mapstructure:"id"`
		Name           string `mapstructure:"name"`
		ScreenName     string `mapstructure:"screen_name"`
		FollowersCount int    `mapstructure:"followers_count"`
	}
	if err := mapstructure.Decode(map[string]any(body), &raw); err != nil {
		return User{}, err
	}

	if raw.ID == "" {
		return User{}, errors.New("cannot get user info")
	}

	return User{
		ID:             raw.ID,
		Name:           raw.Name,
		ScreenName:     raw.ScreenName,
		FollowersCount: raw.FollowersCount,
	}, nil
}

func (e *Endpoint) Comments(ctx context.Context, postURL, cursor string) (CommentPage, error) {
	postID, err := ParsePostID(postURL)
	if err != nil {
		return CommentPage{}, err
	}

	resp, err := e.apiGenerator.New("/comments").
		Query(api.Parameter{"tweet_id": postID, "cursor": cursor}).
		GET(ctx, api.OAuth2("Bearer", e.appAccessToken))
	if err != nil {
		return CommentPage{}, err
	}

	if IsRateLimit(resp) {
		return CommentPage{RateLimited: true}, nil
	}

	body, err := checkResponse(ctx, resp)
	if err != nil {
		return CommentPage{}, err
	}

	var raw struct {
		Items      []Comment `mapstructure:"items"`
		NextCursor string    `mapstructure:"next_cursor"`
	}
	if err := mapstructure.Decode(map[string]any(body), &raw); err != nil {
		return CommentPage{}, err
	}

	return CommentPage{Comments: raw.Items, NextCursor: raw.NextCursor}, nil
}

func (e *Endpoint) LikedBy(ctx context.Context, postURL, cursor string) (ActorPage, error) {
	postID, err := ParsePostID(postURL)
	if err != nil {
		return ActorPage{}, err
	}

	return e.actorPage(ctx, "/liked_by", api.Parameter{"tweet_id": postID, "cursor": cursor})
}

func (e *Endpoint) RetweetedBy(ctx context.Context, postURL, cursor string) (ActorPage, error) {
	postID, err := ParsePostID(postURL)
	if err != nil {
		return ActorPage{}, err
	}

	return e.actorPage(ctx, "/retweeted_by", api.Parameter{"tweet_id": postID, "cursor": cursor})
}

func (e *Endpoint) FollowedBy(ctx context.Context, screenName, cursor string) (ActorPage, error) {
	return e.actorPage(ctx, "/followed_by",
		api.Parameter{"handle": trimHandle(screenName), "cursor": cursor})
}

func (e *Endpoint) SearchedBy(
	ctx context.Context, content string, since time.Time, cursor string,
) (ActorPage, error) {
	return e.actorPage(ctx, "/search", api.Parameter{
		"content":    content,
		"start_time": since.UTC().Format(time.RFC3339),
		"cursor":     cursor,
	})
}

func (e *Endpoint) BotScore(ctx context.Context, actorID string) (float64, error) {
	resp, err := e.apiGenerator.New("/bot_score").
		Query(api.Parameter{"user_id": actorID}).
		GET(ctx, api.OAuth2("Bearer", e.appAccessToken))
	if err != nil {
		return 0, err
	}

	body, err := checkResponse(ctx, resp)
	if err != nil {
		return 0, err
	}

	return body.GetFloat("cap.universal")
}

func (e *Endpoint) actorPage(
	ctx context.Context, path string, query api.Parameter,
) (ActorPage, error) {
	resp, err := e.apiGenerator.New(path).
		Query(query).
		GET(ctx, api.OAuth2("Bearer", e.appAccessToken))
	if err != nil {
		return ActorPage{}, err
	}

	if IsRateLimit(resp) {
		return ActorPage{RateLimited: true}, nil
	}

	body, err := checkResponse(ctx, resp)
	if err != nil {
		return ActorPage{}, err
	}

	var raw struct {
		Items      []string `mapstructure:"items"`
		NextCursor string   `mapstructure:"next_cursor"`
	}
	if err := mapstructure.Decode(map[string]any(body), &raw); err != nil {
		return ActorPage{}, err
	}

	return ActorPage{ActorIDs: raw.Items, NextCursor: raw.NextCursor}, nil
}

func checkResponse(ctx context.Context, resp *api.Response) (api.JSON, error) {
	if resp.Code != 200 {
		xcontext.Logger(ctx).Errorf("Invalid status code: %v", resp.Body)
		return nil, fmt.Errorf("invalid status code %d", resp.Code)
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return nil, errors.New("invalid body format")
	}

	return body, nil
}
