package tracker

import (
	"github.com/pkg/errors"
)

// 状态不一致错误，中止更新，不落任何数据
var (
	// ErrOrphanSell 卖出时不存在未平仓持仓
	ErrOrphanSell = errors.New("sell without an open position")

	// ErrOversell 卖出数量超过剩余持仓
	ErrOversell = errors.New("sell amount exceeds remaining tokens")

	// ErrVersionConflict 乐观锁重试耗尽
	ErrVersionConflict = errors.New("position version conflict after retries")
)
