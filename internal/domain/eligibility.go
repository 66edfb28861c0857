package domain

import (
	"context"
	"fmt"
	"regexp"

	"github.com/VAIOT/lottery-backend/internal/entity"
	"github.com/VAIOT/lottery-backend/internal/repository"
	"github.com/VAIOT/lottery-backend/pkg/api/twitter"
	"github.com/VAIOT/lottery-backend/pkg/enum"
	"github.com/VAIOT/lottery-backend/pkg/xcontext"
)

// Accounts scoring above this are treated as automation and dropped.
const maxBotScore = 0.94

var walletRegexp = regexp.MustCompile(`0x[a-fA-F0-9]{40}`)

type EligibilityDomain interface {
	// ComputeParticipants returns the participant set of the lottery as far
	// as it can currently be known. The bool reports whether every underlying
	// query was exhausted; a false value means the set is partial and must
	// not be committed yet.
	ComputeParticipants(ctx context.Context, lottery *entity.Lottery) ([]entity.Participant, bool, error)
}

type eligibilityDomain struct {
	twitterEndpoint twitter.IEndpoint
	commentFetcher  *Fetcher[twitter.Comment]
	actorFetcher    *Fetcher[string]
}

func NewEligibilityDomain(
	twitterEndpoint twitter.IEndpoint,
	fetchCursorRepo repository.FetchCursorRepository,
) *eligibilityDomain {
	return &eligibilityDomain{
		twitterEndpoint: twitterEndpoint,
		commentFetcher:  NewFetcher[twitter.Comment](fetchCursorRepo),
		actorFetcher:    NewFetcher[string](fetchCursorRepo),
	}
}

func (d *eligibilityDomain) ComputeParticipants(
	ctx context.Context, lottery *entity.Lottery,
) ([]entity.Participant, bool, error) {
	postID, err := twitter.ParsePostID(lottery.WalletPostURL)
	if err != nil {
		return nil, false, err
	}

	commentResult, err := d.commentFetcher.FetchAll(ctx, entity.QueryComments, postID,
		func(ctx context.Context, cursor string) (Page[twitter.Comment], error) {
			page, err := d.twitterEndpoint.Comments(ctx, lottery.WalletPostURL, cursor)
			if err != nil {
				return Page[twitter.Comment]{}, err
			}

			return Page[twitter.Comment]{
				Items:       page.Comments,
				NextCursor:  page.NextCursor,
				RateLimited: page.RateLimited,
			}, nil
		})
	if err != nil {
		return nil, false, err
	}

	complete := commentResult.Complete

	// The first comment of an actor decides their wallet. The owner never
	// participates in their own lottery.
	var order []string
	walletOf := map[string]string{}
	for _, comment := range commentResult.Items {
		if comment.AuthorID == lottery.OwnerActorID {
			continue
		}

		if _, ok := walletOf[comment.AuthorID]; ok {
			continue
		}

		walletOf[comment.AuthorID] = walletRegexp.FindString(comment.Text)
		order = append(order, comment.AuthorID)
	}

	for kind := range lottery.Requirements {
		if _, err := enum.ToEnum[entity.RequirementKind](kind); err != nil {
			xcontext.Logger(ctx).Warnf("Ignore unknown requirement %s of lottery %s", kind, lottery.ID)
		}
	}

	// Every requirement cuts the commenter set down. The evaluation order is
	// fixed so interrupted runs resume the same fetch schedule.
	for _, kind := range entity.RequirementOrder {
		target, ok := lottery.Requirements[string(kind)]
		if !ok {
			continue
		}

		targetStr, ok := target.(string)
		if !ok {
			xcontext.Logger(ctx).Warnf("Ignore malformed requirement %s of lottery %s", kind, lottery.ID)
			continue
		}

		actorResult, err := d.fetchActors(ctx, lottery, kind, targetStr)
		if err != nil {
			return nil, false, err
		}

		complete = complete && actorResult.Complete

		actorSet := map[string]bool{}
		for _, id := range actorResult.Items {
			actorSet[id] = true
		}

		kept := order[:0]
		for _, id := range order {
			if actorSet[id] {
				kept = append(kept, id)
			}
		}
		order = kept
	}

	// Scoring waits until every query is exhausted, so a partial run never
	// spends the bot-filter budget on a set the caller throws away.
	if !complete {
		return nil, false, nil
	}

	participants := []entity.Participant{}
	for _, id := range order {
		score, err := d.twitterEndpoint.BotScore(ctx, id)
		if err != nil {
			// An unscorable account is given the benefit of the doubt.
			xcontext.Logger(ctx).Warnf("Cannot get bot score of %s: %v", id, err)
		} else if score > maxBotScore {
			continue
		}

		participants = append(participants, entity.Participant{ActorID: id, Wallet: walletOf[id]})
	}

	return participants, complete, nil
}

func (d *eligibilityDomain) fetchActors(
	ctx context.Context, lottery *entity.Lottery, kind entity.RequirementKind, target string,
) (FetchResult[string], error) {
	toPage := func(page twitter.ActorPage, err error) (Page[string], error) {
		if err != nil {
			return Page[string]{}, err
		}

		return Page[string]{
			Items:       page.ActorIDs,
			NextCursor:  page.NextCursor,
			RateLimited: page.RateLimited,
		}, nil
	}

	switch kind {
	case entity.RequirementLike:
		postID, err := twitter.ParsePostID(target)
		if err != nil {
			return FetchResult[string]{}, err
		}

		return d.actorFetcher.FetchAll(ctx, entity.QueryLikes, postID,
			func(ctx context.Context, cursor string) (Page[string], error) {
				return toPage(d.twitterEndpoint.LikedBy(ctx, target, cursor))
			})

	case entity.RequirementRetweet:
		postID, err := twitter.ParsePostID(target)
		if err != nil {
			return FetchResult[string]{}, err
		}

		return d.actorFetcher.FetchAll(ctx, entity.QueryRetweets, postID,
			func(ctx context.Context, cursor string) (Page[string], error) {
				return toPage(d.twitterEndpoint.RetweetedBy(ctx, target, cursor))
			})

	case entity.RequirementFollow:
		return d.actorFetcher.FetchAll(ctx, entity.QueryFollowers, target,
			func(ctx context.Context, cursor string) (Page[string], error) {
				return toPage(d.twitterEndpoint.FollowedBy(ctx, target, cursor))
			})

	case entity.RequirementContent:
		// The search window opens at lottery creation, so the key carries it.
		key := fmt.Sprintf("%s|%d", target, lottery.CreatedAt.Unix())
		return d.actorFetcher.FetchAll(ctx, entity.QuerySearch, key,
			func(ctx context.Context, cursor string) (Page[string], error) {
				return toPage(d.twitterEndpoint.SearchedBy(ctx, target, lottery.CreatedAt, cursor))
			})
	}

	return FetchResult[string]{}, fmt.Errorf("not supported requirement %s", kind)
}
