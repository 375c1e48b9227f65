package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"seller_ops_v1_202608/internal/service"
)

// ==================== ResolutionTask 定时解析任务 ====================

// ResolutionTask 周期性跑解析批次
// 批次幂等（只选 unresolved 订单），定时重跑不会产生重复结果；
// 兜住导入方触发漏调的情况。默认关闭，由环境变量开启
type ResolutionTask struct {
	resolution *service.ResolutionService
	cron       *cron.Cron

	spec         string        // cron 表达式（带秒）
	batchTimeout time.Duration // 单批次超时
}

// NewResolutionTask 创建定时解析任务
func NewResolutionTask(resolution *service.ResolutionService) *ResolutionTask {
	return &ResolutionTask{
		resolution:   resolution,
		cron:         cron.New(cron.WithSeconds()),
		spec:         "0 */15 * * * *", // 每 15 分钟
		batchTimeout: 10 * time.Minute,
	}
}

// SetSchedule 覆盖默认调度参数
func (t *ResolutionTask) SetSchedule(spec string, timeout time.Duration) {
	if spec != "" {
		t.spec = spec
	}
	if timeout > 0 {
		t.batchTimeout = timeout
	}
}

// Start 启动定时任务
func (t *ResolutionTask) Start() {
	// 首次执行
	go t.runOnce()

	_, err := t.cron.AddFunc(t.spec, t.runOnce)
	if err != nil {
		log.Printf("[ResolutionTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Printf("[ResolutionTask] 已启动 (%s)", t.spec)
}

// Stop 停止任务，等当前批次收尾
func (t *ResolutionTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[ResolutionTask] 已停止")
}

// runOnce 跑一个批次
func (t *ResolutionTask) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), t.batchTimeout)
	defer cancel()

	result, err := t.resolution.ResolveAll(ctx)
	if err != nil {
		log.Printf("[ResolutionTask] 批次执行失败: %v", err)
		return
	}

	if result.Processed == 0 {
		// 没有待解析订单，空转属正常
		return
	}
	log.Printf("[ResolutionTask] 批次 %s: 处理 %d 成功 %d 失败 %d",
		result.RunID, result.Processed, result.Resolved, result.Failed)
}
