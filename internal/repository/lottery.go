package repository

import (
	"context"
	"time"

	"github.com/VAIOT/lottery-backend/internal/entity"
	"github.com/VAIOT/lottery-backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LotteryRepository interface {
	Create(ctx context.Context, lottery *entity.Lottery) error
	GetByID(ctx context.Context, id string) (*entity.Lottery, error)
	GetDue(ctx context.Context, now time.Time) ([]entity.Lottery, error)
	NextLotteryID(ctx context.Context, assetGroup string) (int64, error)
	AssignLotteryID(ctx context.Context, id string, lotteryID int64) error
	UpdateState(ctx context.Context, id string, from, to entity.LotteryState) error
	UpdateTransactions(ctx context.Context, id string, txs []entity.FundingTx) error
	UpdateWinners(ctx context.Context, id string, winners []string) error
	UpdateParticipants(ctx context.Context, id string, participants []entity.Participant) error
}

type lotteryRepository struct{}

func NewLotteryRepository() *lotteryRepository {
	return &lotteryRepository{}
}

func (r *lotteryRepository) Create(ctx context.Context, lottery *entity.Lottery) error {
	return xcontext.DB(ctx).Create(lottery).Error
}

func (r *lotteryRepository) GetByID(ctx context.Context, id string) (*entity.Lottery, error) {
	var result entity.Lottery
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *lotteryRepository) GetDue(ctx context.Context, now time.Time) ([]entity.Lottery, error) {
	var result []entity.Lottery
	err := xcontext.DB(ctx).
		Where("state IN ? AND end_time <= ?",
			[]entity.LotteryState{
				entity.LotteryOpen, entity.LotteryClosing, entity.LotteryWinnerSelection,
			}, now).
		Order("end_time ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// NextLotteryID reserves the next sequence number of an asset family. The
// counter row is bumped with an atomic upsert, so when this runs inside a
// transaction the row stays locked until commit and two concurrent
// confirmations of the same family can never be handed the same number.
func (r *lotteryRepository) NextLotteryID(ctx context.Context, assetGroup string) (int64, error) {
	err := xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "asset_group"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_id": gorm.Expr("last_id + 1"),
		}),
	}).Create(&entity.LotterySequence{AssetGroup: assetGroup, LastID: 1}).Error
	if err != nil {
		return 0, err
	}

	var seq entity.LotterySequence
	if err := xcontext.DB(ctx).Take(&seq, "asset_group=?", assetGroup).Error; err != nil {
		return 0, err
	}

	return seq.LastID, nil
}

func (r *lotteryRepository) AssignLotteryID(ctx context.Context, id string, lotteryID int64) error {
	tx := xcontext.DB(ctx).Model(&entity.Lottery{}).
		Where("id=? AND lottery_id = 0", id).
		Update("lottery_id", lotteryID)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// UpdateState is the transition guard of the lottery state machine. The
// conditional update makes transitions race-safe: a lottery already moved
// away from the expected state is reported as gorm.ErrRecordNotFound.
func (r *lotteryRepository) UpdateState(
	ctx context.Context, id string, from, to entity.LotteryState,
) error {
	if !from.CanTransitionTo(to) {
		return gorm.ErrInvalidValue
	}

	tx := xcontext.DB(ctx).Model(&entity.Lottery{}).
		Where("id=? AND state=?", id, from).
		Update("state", to)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *lotteryRepository) UpdateTransactions(
	ctx context.Context, id string, txs []entity.FundingTx,
) error {
	return xcontext.DB(ctx).Model(&entity.Lottery{}).
		Where("id=?", id).
		Update("transactions", entity.Array[entity.FundingTx](txs)).Error
}

func (r *lotteryRepository) UpdateWinners(ctx context.Context, id string, winners []string) error {
	return xcontext.DB(ctx).Model(&entity.Lottery{}).
		Where("id=?", id).
		Update("winners", entity.Array[string](winners)).Error
}

func (r *lotteryRepository) UpdateParticipants(
	ctx context.Context, id string, participants []entity.Participant,
) error {
	return xcontext.DB(ctx).Model(&entity.Lottery{}).
		Where("id=?", id).
		Update("participants", entity.Array[entity.Participant](participants)).Error
}
