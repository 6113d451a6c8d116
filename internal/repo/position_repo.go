package repo

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ninja0404/trade-journal/internal/model"
)

type PositionRepo interface {
	// FindActive 查找 (token, wallet) 下的 OPEN/PARTIAL 持仓
	FindActive(tokenID int64, walletID *int64) (*model.Position, error)

	// Create 创建新持仓
	Create(position *model.Position) error

	// UpdateWithVersion 按乐观锁版本号更新持仓，版本不匹配返回 false
	UpdateWithVersion(position *model.Position, expectedVersion int64) (bool, error)

	// GetByID 根据ID获取持仓
	GetByID(id int64) (*model.Position, error)

	// ListActive 列出全部 OPEN/PARTIAL 持仓
	ListActive() ([]*model.Position, error)

	// SumRealizedPnl 汇总全部持仓的已实现盈亏
	SumRealizedPnl() (decimal.Decimal, error)

	// CountByStatus 按状态统计持仓数量
	CountByStatus(status string) (int64, error)
}

type positionRepoImpl struct {
	db *gorm.DB
}

func NewPositionRepo(db *gorm.DB) PositionRepo {
	return &positionRepoImpl{
		db: db,
	}
}

// FindActive 查找 (token, wallet) 下的 OPEN/PARTIAL 持仓
func (r *positionRepoImpl) FindActive(tokenID int64, walletID *int64) (*model.Position, error) {
	var position model.Position

	query := r.db.
		Where("token_id = ?", tokenID).
		Where("status IN (?, ?)", model.PositionStatusOpen, model.PositionStatusPartial)
	if walletID != nil {
		query = query.Where("wallet_id = ?", *walletID)
	} else {
		query = query.Where("wallet_id IS NULL")
	}

	err := query.First(&position).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &position, nil
}

// Create 创建新持仓
func (r *positionRepoImpl) Create(position *model.Position) error {
	return r.db.Create(position).Error
}

// UpdateWithVersion 按乐观锁版本号更新持仓，版本不匹配返回 false
func (r *positionRepoImpl) UpdateWithVersion(position *model.Position, expectedVersion int64) (bool, error) {
	updates := map[string]interface{}{
		"status":             position.Status,
		"total_bought":       position.TotalBought,
		"total_sold":         position.TotalSold,
		"remaining_tokens":   position.RemainingTokens,
		"total_cost_usd":     position.TotalCostUsd,
		"total_proceeds_usd": position.TotalProceedsUsd,
		"realized_pnl_usd":   position.RealizedPnlUsd,
		"closed_at":          position.ClosedAt,
		"version":            expectedVersion + 1,
	}

	result := r.db.Model(&model.Position{}).
		Where("id = ? AND version = ?", position.ID, expectedVersion).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	position.Version = expectedVersion + 1
	return true, nil
}

// GetByID 根据ID获取持仓
func (r *positionRepoImpl) GetByID(id int64) (*model.Position, error) {
	var position model.Position
	err := r.db.First(&position, id).Error
	if err != nil {
		return nil, err
	}
	return &position, nil
}

// ListActive 列出全部 OPEN/PARTIAL 持仓
func (r *positionRepoImpl) ListActive() ([]*model.Position, error) {
	var positions []*model.Position

	err := r.db.
		Where("status IN (?, ?)", model.PositionStatusOpen, model.PositionStatusPartial).
		Order("opened_at ASC").
		Find(&positions).Error

	return positions, err
}

// SumRealizedPnl 汇总全部持仓的已实现盈亏
func (r *positionRepoImpl) SumRealizedPnl() (decimal.Decimal, error) {
	var pnl decimal.NullDecimal

	err := r.db.Model(&model.Position{}).
		Select("SUM(realized_pnl_usd)").
		Scan(&pnl).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !pnl.Valid {
		return decimal.Zero, nil
	}

	return pnl.Decimal, nil
}

// CountByStatus 按状态统计持仓数量
func (r *positionRepoImpl) CountByStatus(status string) (int64, error) {
	var count int64

	err := r.db.Model(&model.Position{}).
		Where("status = ?", status).
		Count(&count).Error

	return count, err
}
