package repo

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ninja0404/trade-journal/internal/model"
)

type TokenRepo interface {
	// GetOrCreate 获取或创建代币，地址统一小写
	GetOrCreate(address string, chain string) (*model.Token, error)

	// UpdateMeta 在首次价格查询成功后补齐符号和名称，已有值不覆盖为空
	UpdateMeta(id int64, symbol string, name string) error

	// GetByID 根据ID获取代币
	GetByID(id int64) (*model.Token, error)
}

type tokenRepoImpl struct {
	db *gorm.DB
}

func NewTokenRepo(db *gorm.DB) TokenRepo {
	return &tokenRepoImpl{
		db: db,
	}
}

// GetOrCreate 获取或创建代币，地址统一小写
func (r *tokenRepoImpl) GetOrCreate(address string, chain string) (*model.Token, error) {
	address = strings.ToLower(address)

	var token model.Token
	err := r.db.
		Where("address = ? AND chain = ?", address, chain).
		First(&token).Error
	if err == nil {
		return &token, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	token = model.Token{
		Address: address,
		Chain:   chain,
	}
	// 并发插入时冲突则忽略，再读一次
	err = r.db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&token).Error
	if err != nil {
		return nil, err
	}
	if token.ID == 0 {
		err = r.db.
			Where("address = ? AND chain = ?", address, chain).
			First(&token).Error
		if err != nil {
			return nil, err
		}
	}

	return &token, nil
}

// UpdateMeta 在首次价格查询成功后补齐符号和名称
func (r *tokenRepoImpl) UpdateMeta(id int64, symbol string, name string) error {
	updates := map[string]interface{}{}
	if symbol != "" {
		updates["symbol"] = symbol
	}
	if name != "" {
		updates["name"] = name
	}
	if len(updates) == 0 {
		return nil
	}

	return r.db.Model(&model.Token{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// GetByID 根据ID获取代币
func (r *tokenRepoImpl) GetByID(id int64) (*model.Token, error) {
	var token model.Token
	err := r.db.First(&token, id).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}
