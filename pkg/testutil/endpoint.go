package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/VAIOT/lottery-backend/pkg/api/twitter"
)

type MockTwitterEndpoint struct {
	GetTweetFunc    func(context.Context, string) (twitter.Tweet, error)
	GetUserFunc     func(context.Context, string) (twitter.User, error)
	CommentsFunc    func(context.Context, string, string) (twitter.CommentPage, error)
	LikedByFunc     func(context.Context, string, string) (twitter.ActorPage, error)
	RetweetedByFunc func(context.Context, string, string) (twitter.ActorPage, error)
	FollowedByFunc  func(context.Context, string, string) (twitter.ActorPage, error)
	SearchedByFunc  func(context.Context, string, time.Time, string) (twitter.ActorPage, error)
	BotScoreFunc    func(context.Context, string) (float64, error)
}

func (e *MockTwitterEndpoint) GetTweet(ctx context.Context, postURL string) (twitter.Tweet, error) {
	if e.GetTweetFunc != nil {
		return e.GetTweetFunc(ctx, postURL)
	}

	return twitter.Tweet{}, errors.New("not implemented")
}

func (e *MockTwitterEndpoint) GetUser(ctx context.Context, screenName string) (twitter.User, error) {
	if e.GetUserFunc != nil {
		return e.GetUserFunc(ctx, screenName)
	}

	return twitter.User{}, errors.New("not implemented")
}

func (e *MockTwitterEndpoint) Comments(
	ctx context.Context, postURL, cursor string,
) (twitter.CommentPage, error) {
	if e.CommentsFunc != nil {
		return e.CommentsFunc(ctx, postURL, cursor)
	}

	return twitter.CommentPage{}, errors.New("not implemented")
}

func (e *MockTwitterEndpoint) LikedBy(
	ctx context.Context, postURL, cursor string,
) (twitter.ActorPage, error) {
	if e.LikedByFunc != nil {
		return e.LikedByFunc(ctx, postURL, cursor)
	}

	return twitter.ActorPage{}, errors.New("not implemented")
}

func (e *MockTwitterEndpoint) RetweetedBy(
	ctx context.Context, postURL, cursor string,
) (twitter.ActorPage, error) {
	if e.RetweetedByFunc != nil {
		return e.RetweetedByFunc(ctx, postURL, cursor)
	}

	return twitter.ActorPage{}, errors.New("not implemented")
}

func (e *MockTwitterEndpoint) FollowedBy(
	ctx context.Context, screenName, cursor string,
) (twitter.ActorPage, error) {
	if e.FollowedByFunc != nil {
		return e.FollowedByFunc(ctx, screenName, cursor)
	}

	return twitter.ActorPage{}, errors.New("not implemented")
}

func (e *MockTwitterEndpoint) SearchedBy(
	ctx context.Context, content string, since time.Time, cursor string,
) (twitter.ActorPage, error) {
	if e.SearchedByFunc != nil {
		return e.SearchedByFunc(ctx, content, since, cursor)
	}

	return twitter.ActorPage{}, errors.New("not implemented")
}

func (e *MockTwitterEndpoint) BotScore(ctx context.Context, actorID string) (float64, error) {
	if e.BotScoreFunc != nil {
		return e.BotScoreFunc(ctx, actorID)
	}

	return 0, nil
}

type MockTelegramEndpoint struct {
	SendMessageFunc func(context.Context, string) error

	mutex    sync.Mutex
	messages []string
}

func (e *MockTelegramEndpoint) SendMessage(ctx context.Context, text string) error {
	if e.SendMessageFunc != nil {
		return e.SendMessageFunc(ctx, text)
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.messages = append(e.messages, text)
	return nil
}

func (e *MockTelegramEndpoint) Sent() []string {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return append([]string{}, e.messages...)
}
