package parser

import (
	"github.com/pkg/errors"
)

// 解析阶段错误，用户可修正，不落库
var (
	ErrEmptyMessage       = errors.New("empty message")
	ErrNoAddressFound     = errors.New("no token address found in message")
	ErrAmbiguousDirection = errors.New("cannot determine trade direction")
)
