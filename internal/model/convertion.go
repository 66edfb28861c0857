package model

import (
	"github.com/VAIOT/lottery-backend/internal/entity"
)

func ConvertNfts(entityNfts []entity.Nft) []Nft {
	modelNfts := []Nft{}
	for _, n := range entityNfts {
		modelNfts = append(modelNfts, Nft{
			Name:            n.Name,
			TokenID:         n.TokenID,
			ContractAddress: n.ContractAddress,
		})
	}
	return modelNfts
}

func ConvertLottery(lottery *entity.Lottery) Lottery {
	if lottery == nil {
		return Lottery{}
	}

	transactions := []FundingTx{}
	for _, tx := range lottery.Transactions {
		transactions = append(transactions, FundingTx{Hash: tx.Hash, Status: string(tx.Status)})
	}

	participants := []Participant{}
	for _, p := range lottery.Participants {
		participants = append(participants, Participant{ActorID: p.ActorID, Wallet: p.Wallet})
	}

	requirements := map[string]string{}
	for kind, target := range lottery.Requirements {
		if s, ok := target.(string); ok {
			requirements[kind] = s
		}
	}

	return Lottery{
		ID:                 lottery.ID,
		LotteryID:          lottery.LotteryID,
		AssetType:          string(lottery.AssetType),
		Erc20Token:         string(lottery.Erc20Token),
		Nfts:               ConvertNfts(lottery.Nfts),
		DurationHours:      lottery.DurationHours,
		EndTime:            lottery.EndTime,
		DistributionMethod: string(lottery.DistributionMethod),
		DistributionShares: lottery.DistributionShares,
		TotalTokens:        lottery.TotalTokens,
		NumWinners:         lottery.NumWinners,
		OwnerWallet:        lottery.OwnerWallet,
		WalletPostURL:      lottery.WalletPostURL,
		Requirements:       requirements,
		Transactions:       transactions,
		Participants:       participants,
		Winners:            lottery.Winners,
		State:              string(lottery.State),
	}
}
