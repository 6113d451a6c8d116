package repo

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ninja0404/trade-journal/internal/model"
)

type WalletRepo interface {
	// GetOrCreate 获取或创建钱包
	GetOrCreate(address string, chain string) (*model.Wallet, error)
}

type walletRepoImpl struct {
	db *gorm.DB
}

func NewWalletRepo(db *gorm.DB) WalletRepo {
	return &walletRepoImpl{
		db: db,
	}
}

// GetOrCreate 获取或创建钱包
func (r *walletRepoImpl) GetOrCreate(address string, chain string) (*model.Wallet, error) {
	var wallet model.Wallet
	err := r.db.
		Where("address = ? AND chain = ?", address, chain).
		First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	wallet = model.Wallet{
		Address: address,
		Chain:   chain,
	}
	err = r.db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&wallet).Error
	if err != nil {
		return nil, err
	}
	if wallet.ID == 0 {
		err = r.db.
			Where("address = ? AND chain = ?", address, chain).
			First(&wallet).Error
		if err != nil {
			return nil, err
		}
	}

	return &wallet, nil
}
