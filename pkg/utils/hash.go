package utils

import (
	"hash/fnv"
)

// CalcFnvStripe 计算字符串对应的分片下标
func CalcFnvStripe(src string, stripes uint32) uint32 {
	h := fnv.New32a()
	h.Write([]byte(src))
	return h.Sum32() % stripes
}
