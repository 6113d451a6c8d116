package model

import (
	"time"
)

const TableNameWallet = "wallets"

// Wallet 钱包表
type Wallet struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement:true" json:"id"`
	Address   string     `gorm:"column:address;not null;uniqueIndex:uk_wallet_address_chain,priority:1;comment:钱包地址" json:"address"` // 钱包地址
	Chain     string     `gorm:"column:chain;not null;uniqueIndex:uk_wallet_address_chain,priority:2;comment:所属链" json:"chain"`      // 所属链
	Nickname  string     `gorm:"column:nickname;comment:钱包昵称" json:"nickname"`                                                       // 钱包昵称
	CreatedAt *time.Time `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at;not null;autoUpdateTime" json:"updated_at"`
}

// TableName Wallet's table name
func (*Wallet) TableName() string {
	return TableNameWallet
}
