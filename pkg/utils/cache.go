package utils

import (
	"sync"
	"time"
)

// 进程内 TTL 缓存，目前只给汇率表用：
// 对账是读多写少的场景，一个批次内反复查库不值得

// 使用 sync.Map 保证并发安全
var memoryCache sync.Map

// cacheItem 内部结构，包含值和过期时间
type cacheItem struct {
	value      float64
	expiration int64
}

// SetRateCache 缓存一个币种的汇率
func SetRateCache(key string, value float64, ttl time.Duration) {
	memoryCache.Store(key, cacheItem{
		value:      value,
		expiration: time.Now().Add(ttl).Unix(),
	})
}

// GetRateCache 读取缓存并验证是否过期
func GetRateCache(key string) (float64, bool) {
	val, ok := memoryCache.Load(key)
	if !ok {
		return 0, false
	}

	item := val.(cacheItem)

	// 检查是否过期
	if time.Now().Unix() > item.expiration {
		memoryCache.Delete(key) // 懒删除
		return 0, false
	}

	return item.value, true
}

// DeleteRateCache 删除缓存（汇率表被改写后调用）
func DeleteRateCache(key string) {
	memoryCache.Delete(key)
}
