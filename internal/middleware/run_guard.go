package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== RunLimiter 批次触发限流器 ====================

// RunLimiter 手动触发类操作的冷却限流
// 解析批次本身幂等，但连点触发会白白压数据库，给个冷却窗口
type RunLimiter struct {
	locks sync.Map // key -> *lockEntry
}

// lockEntry 锁条目
type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// 全局限流器实例
var globalRunLimiter = &RunLimiter{}

// GetRunLimiter 获取全局限流器
func GetRunLimiter() *RunLimiter {
	return globalRunLimiter
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查是否允许执行，允许时顺带刷新最后执行时间
func (r *RunLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(entry.lastTime)

	if elapsed < interval {
		return CheckResult{Allowed: false, RetryAfter: interval - elapsed}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 重置指定 key 的冷却（管理员使用）
func (r *RunLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// ==================== Gin 中间件 ====================

// ResolutionRunKey 解析批次触发的限流键
const ResolutionRunKey = "resolution:run"

// RunGuard 批次触发冷却中间件
//
// 使用示例:
//
//	api.POST("/resolution/run",
//	    middleware.RunGuard(middleware.ResolutionRunKey, 30*time.Second),
//	    resolutionCtl.Run,
//	)
func RunGuard(key string, interval time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := GetRunLimiter().Check(key, interval)
		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds())
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": fmt.Sprintf("批次冷却中，请 %d 秒后重试", retryAfter),
				"data":    gin.H{"retry_after": retryAfter},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
