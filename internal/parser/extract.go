package parser

import (
	"strings"
)

// Extract 在原始文本上按序执行全部提取规则
// 字段缺失不报错，只有空输入才返回错误
func Extract(rawText string) (*RawFields, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, ErrEmptyMessage
	}

	fields := &RawFields{}
	for _, rule := range defaultRules {
		rule.Apply(rawText, fields)
	}

	return fields, nil
}
