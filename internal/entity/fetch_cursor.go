package entity

import (
	"encoding/json"
	"time"

	"github.com/VAIOT/lottery-backend/pkg/enum"
)

type QueryKind string

var (
	QueryComments  = enum.New(QueryKind("comments"))
	QueryLikes     = enum.New(QueryKind("likes"))
	QueryRetweets  = enum.New(QueryKind("retweets"))
	QueryFollowers = enum.New(QueryKind("followers"))
	QuerySearch    = enum.New(QueryKind("search"))
)

// FetchCursor is the persisted progress of one paginated external query,
// content-addressed by (kind, key) so lotteries referencing the same post
// share it. Items accumulates the pages retrieved so far; Cursor is the
// opaque continuation token of the external API.
type FetchCursor struct {
	QueryKind QueryKind       `json:"query_kind"`
	QueryKey  string          `json:"query_key"`
	Cursor    string          `json:"cursor"`
	Items     json.RawMessage `json:"items"`
	Complete  bool            `json:"complete"`
	UpdatedAt time.Time       `json:"updated_at"`
}
