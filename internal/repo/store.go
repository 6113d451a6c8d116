package repo

import (
	"gorm.io/gorm"
)

// Store 聚合全部仓储，Transaction 内提供事务作用域的Store
type Store interface {
	Tokens() TokenRepo
	Wallets() WalletRepo
	Trades() TradeRepo
	Positions() PositionRepo

	// Transaction 在单个数据库事务内执行fn，fn返回错误则整体回滚
	Transaction(fn func(tx Store) error) error
}

type storeImpl struct {
	db *gorm.DB

	tokens    TokenRepo
	wallets   WalletRepo
	trades    TradeRepo
	positions PositionRepo
}

func NewStore(db *gorm.DB) Store {
	return &storeImpl{
		db:        db,
		tokens:    NewTokenRepo(db),
		wallets:   NewWalletRepo(db),
		trades:    NewTradeRepo(db),
		positions: NewPositionRepo(db),
	}
}

func (s *storeImpl) Tokens() TokenRepo       { return s.tokens }
func (s *storeImpl) Wallets() WalletRepo     { return s.wallets }
func (s *storeImpl) Trades() TradeRepo       { return s.trades }
func (s *storeImpl) Positions() PositionRepo { return s.positions }

func (s *storeImpl) Transaction(fn func(tx Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
