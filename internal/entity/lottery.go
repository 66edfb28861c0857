package entity

import (
	"context"
	"time"

	"github.com/VAIOT/lottery-backend/pkg/enum"
	"github.com/VAIOT/lottery-backend/pkg/xcontext"
)

type AssetType string

var (
	AssetMatic  = enum.New(AssetType("matic"))
	AssetErc20  = enum.New(AssetType("erc20"))
	AssetErc721 = enum.New(AssetType("erc721"))
)

type Erc20Token string

var (
	Erc20Usdt = enum.New(Erc20Token("usdt"))
	Erc20Usdc = enum.New(Erc20Token("usdc"))
	Erc20Eth  = enum.New(Erc20Token("eth"))
)

type DistributionMethod string

var (
	DistributionSplit      = enum.New(DistributionMethod("split"))
	DistributionPercentage = enum.New(DistributionMethod("percentage"))
)

type RequirementKind string

var (
	RequirementLike    = enum.New(RequirementKind("like"))
	RequirementContent = enum.New(RequirementKind("content"))
	RequirementRetweet = enum.New(RequirementKind("retweet"))
	RequirementFollow  = enum.New(RequirementKind("follow"))
)

// RequirementOrder fixes the evaluation order of the eligibility pipeline.
// The final participant set does not depend on this order, only the fetch
// schedule does.
var RequirementOrder = []RequirementKind{
	RequirementLike,
	RequirementContent,
	RequirementRetweet,
	RequirementFollow,
}

type TxStatus string

var (
	TxPending = enum.New(TxStatus("pending"))
	TxSuccess = enum.New(TxStatus("success"))
	TxFailed  = enum.New(TxStatus("failed"))
	TxStuck   = enum.New(TxStatus("stuck"))
)

func (s TxStatus) Terminal() bool {
	return s != TxPending
}

type FundingTx struct {
	Hash   string   `json:"hash"`
	Status TxStatus `json:"status"`
}

type Participant struct {
	ActorID string `json:"author_id"`
	Wallet  string `json:"wallet"`
}

type Nft struct {
	Name            string `json:"name"`
	TokenID         int64  `json:"token_id"`
	ContractAddress string `json:"contract_address"`
}

type LotteryState string

var (
	LotteryPending           = enum.New(LotteryState("pending"))
	LotteryOpen              = enum.New(LotteryState("open"))
	LotteryClosing           = enum.New(LotteryState("closing"))
	LotteryWinnerSelection   = enum.New(LotteryState("winner_selection"))
	LotterySettled           = enum.New(LotteryState("settled"))
	LotteryCancelled         = enum.New(LotteryState("cancelled"))
	LotteryEmergencyCashback = enum.New(LotteryState("emergency_cashback"))
)

// transitions is the only legal forward edge set. A lottery never regresses
// to an earlier state and terminal states are absorbing.
var transitions = map[LotteryState][]LotteryState{
	LotteryPending:         {LotteryOpen, LotteryCancelled},
	LotteryOpen:            {LotteryClosing},
	LotteryClosing:         {LotteryWinnerSelection, LotteryCancelled, LotteryEmergencyCashback},
	LotteryWinnerSelection: {LotterySettled, LotteryCancelled, LotteryEmergencyCashback},
}

func (s LotteryState) CanTransitionTo(next LotteryState) bool {
	for _, allowed := range transitions[s] {
		if next == allowed {
			return true
		}
	}

	return false
}

func (s LotteryState) Terminal() bool {
	return len(transitions[s]) == 0
}

type Lottery struct {
	Base

	// LotteryID is the sequence number known by the payout service. It is
	// assigned per asset family when funding confirms, not at creation.
	LotteryID int64 `gorm:"index"`

	AssetType  AssetType
	Erc20Token Erc20Token
	Nfts       Array[Nft]

	DurationHours int
	EndTime       time.Time `gorm:"index"`

	DistributionMethod DistributionMethod
	DistributionShares Array[int]
	TotalTokens        string
	NumWinners         int

	// Winners holds the winning wallets once the lottery settles.
	Winners Array[string]

	OwnerWallet  string
	OwnerActorID string

	// WalletPostURL is the mandatory post whose replies carry the
	// participant wallets. Requirements maps the optional requirement kinds
	// (like, content, retweet, follow) to their target value.
	WalletPostURL string
	Requirements  Map

	Transactions Array[FundingTx]
	Participants Array[Participant]

	State LotteryState `gorm:"index"`
}

// AssetGroup names the payout service handling this lottery: native-coin
// lotteries live on the matic service, erc20/erc721 ones share the erc
// service sequence.
func (l *Lottery) AssetGroup() string {
	if l.AssetType == AssetMatic {
		return "matic"
	}

	return "erc"
}

func (l *Lottery) Fungible() bool {
	return l.AssetType != AssetErc721
}

// LotterySequence is the counter row handing out the lottery numbers of one
// asset family.
type LotterySequence struct {
	AssetGroup string `gorm:"primaryKey"`
	LastID     int64
}

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(&Lottery{}, &LotterySequence{})
}
