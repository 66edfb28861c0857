package model

import "time"

type Nft struct {
	Name            string `json:"name"`
	TokenID         int64  `json:"token_id"`
	ContractAddress string `json:"contract_address"`
}

type FundingTx struct {
	Hash   string `json:"hash"`
	Status string `json:"status"`
}

type Participant struct {
	ActorID string `json:"author_id"`
	Wallet  string `json:"wallet"`
}

type CreateLotteryRequest struct {
	AssetType  string `json:"asset_type"`
	Erc20Token string `json:"erc20_token"`
	Nfts       []Nft  `json:"nfts"`

	DurationHours int `json:"duration_hours"`

	DistributionMethod string `json:"distribution_method"`
	DistributionShares []int  `json:"distribution_shares"`
	TotalTokens        string `json:"total_tokens"`
	NumWinners         int    `json:"num_winners"`

	OwnerWallet       string            `json:"owner_wallet"`
	OwnerTwitterName  string            `json:"owner_twitter_name"`
	WalletPostURL     string            `json:"wallet_post_url"`
	Requirements      map[string]string `json:"requirements"`
	TransactionHashes []string          `json:"transaction_hashes"`
}

type CreateLotteryResponse struct {
	ID string `json:"id"`
}

type GetLotteryRequest struct {
	ID string `json:"id"`
}

type GetLotteryResponse struct {
	Lottery Lottery `json:"lottery"`
}

type Lottery struct {
	ID        string `json:"id"`
	LotteryID int64  `json:"lottery_id"`

	AssetType  string `json:"asset_type"`
	Erc20Token string `json:"erc20_token,omitempty"`
	Nfts       []Nft  `json:"nfts,omitempty"`

	DurationHours int       `json:"duration_hours"`
	EndTime       time.Time `json:"end_time"`

	DistributionMethod string `json:"distribution_method"`
	DistributionShares []int  `json:"distribution_shares"`
	TotalTokens        string `json:"total_tokens"`
	NumWinners         int    `json:"num_winners"`

	OwnerWallet   string            `json:"owner_wallet"`
	WalletPostURL string            `json:"wallet_post_url"`
	Requirements  map[string]string `json:"requirements"`

	Transactions []FundingTx   `json:"transactions"`
	Participants []Participant `json:"participants"`
	Winners      []string      `json:"winners,omitempty"`

	State string `json:"state"`
}
