package model

import (
	"time"
)

const TableNameToken = "tokens"

// Token 代币表
type Token struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement:true" json:"id"`
	Address   string     `gorm:"column:address;not null;uniqueIndex:uk_address_chain,priority:1;comment:代币地址(小写)" json:"address"` // 代币地址(小写)
	Chain     string     `gorm:"column:chain;not null;uniqueIndex:uk_address_chain,priority:2;comment:所属链" json:"chain"`          // 所属链
	Symbol    string     `gorm:"column:symbol;comment:代币符号" json:"symbol"`                                                        // 代币符号
	Name      string     `gorm:"column:name;comment:代币名称" json:"name"`                                                            // 代币名称
	CreatedAt *time.Time `gorm:"column:created_at;not null;autoCreateTime" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at;not null;autoUpdateTime" json:"updated_at"`
}

// TableName Token's table name
func (*Token) TableName() string {
	return TableNameToken
}
