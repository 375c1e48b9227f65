package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"seller_ops_v1_202608/internal/model"
	"seller_ops_v1_202608/internal/repository"

	"github.com/google/uuid"
)

// ==================== 批次结果 ====================

// BatchResult 一次解析批次的汇总
type BatchResult struct {
	RunID     string        `json:"run_id"`
	Processed int64         `json:"processed"` // 实际派发的订单数（批次被取消时小于选中数）
	Resolved  int64         `json:"resolved"`  // 解析成功
	Failed    int64         `json:"failed"`    // 解析失败（含写库失败）
	Skipped   int64         `json:"skipped"`   // CAS 未命中（被并发批次抢先处理）
	Duration  time.Duration `json:"duration"`
}

// ==================== ResolutionService 解析编排器 ====================

// ResolutionService 批量驱动 SKU 映射 + 变体匹配，写回解析结果并落异常
//
// 幂等性：只选 unresolved 订单，目录没变化时重跑等于空转；
// 单个订单失败不影响批次其余订单（continue-on-error）
type ResolutionService struct {
	orderRepo   repository.OrderRepository
	catalogRepo repository.CatalogRepository
	resolver    *ResolverService
	exceptions  *ExceptionService

	concurrency int
}

// NewResolutionService 创建解析编排器
func NewResolutionService(
	orderRepo repository.OrderRepository,
	catalogRepo repository.CatalogRepository,
	resolver *ResolverService,
	exceptions *ExceptionService,
) *ResolutionService {
	return &ResolutionService{
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		resolver:    resolver,
		exceptions:  exceptions,
		concurrency: 4,
	}
}

// SetConcurrency 设置批次内并发度（订单之间相互独立，并行安全）
func (s *ResolutionService) SetConcurrency(n int) {
	if n > 0 {
		s.concurrency = n
	}
}

// ==================== 批次入口 ====================

// ResolveAll 解析所有待处理订单
// 订单级失败不中断批次；ctx 取消时停止派发剩余订单
func (s *ResolutionService) ResolveAll(ctx context.Context) (*BatchResult, error) {
	runID := uuid.NewString()[:8]
	start := time.Now()

	orders, err := s.orderRepo.ListResolvable(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询待解析订单失败: %w", err)
	}

	log.Printf("[Resolution] 批次 %s 开始，待解析订单 %d 条", runID, len(orders))

	var resolved, failed, skipped int64
	var dispatched int64

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i := range orders {
		// 协作式取消：批次中途取消时不再派发新订单
		if ctx.Err() != nil {
			log.Printf("[Resolution] 批次 %s 被取消，剩余 %d 条未派发", runID, len(orders)-i)
			break
		}

		order := orders[i]
		dispatched++
		sem <- struct{}{}
		wg.Add(1)

		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			switch outcome := s.resolveOne(ctx, &order); outcome {
			case outcomeResolved:
				atomic.AddInt64(&resolved, 1)
			case outcomeSkipped:
				atomic.AddInt64(&skipped, 1)
			default:
				atomic.AddInt64(&failed, 1)
			}
		}()
	}

	wg.Wait()

	result := &BatchResult{
		RunID:     runID,
		Processed: dispatched,
		Resolved:  resolved,
		Failed:    failed,
		Skipped:   skipped,
		Duration:  time.Since(start),
	}

	log.Printf("[Resolution] 批次 %s 完成: 成功 %d 失败 %d 跳过 %d 耗时 %v",
		runID, result.Resolved, result.Failed, result.Skipped, result.Duration)

	return result, nil
}

// ==================== 单订单解析 ====================

type resolveOutcome int

const (
	outcomeResolved resolveOutcome = iota
	outcomeFailed
	outcomeSkipped
)

// resolveOne 解析单个订单并落库
// 目录查询包在一个快照里，避免读到并发目录编辑改了一半的变体集合
func (s *ResolutionService) resolveOne(ctx context.Context, order *model.Order) resolveOutcome {
	var matched repository.ResolvedFields

	err := s.catalogRepo.Snapshot(ctx, func(cat repository.CatalogReader) error {
		product, err := s.resolver.MapSku(ctx, cat, order.StoreID, order.RawSKU)
		if err != nil {
			return err
		}

		variants, err := cat.ListVariants(ctx, product.ID)
		if err != nil {
			return fmt.Errorf("查询商品变体失败: %w", err)
		}
		if len(variants) == 0 {
			return &ResolveError{
				Kind:    model.FailureProductHasNoVariants,
				Message: fmt.Sprintf("商品 %s 下没有任何变体", product.GPID),
			}
		}

		variant, err := s.resolver.MatchVariant(variants, order.RawColor, order.RawSize)
		if err != nil {
			return err
		}

		matched = repository.ResolvedFields{
			ProductID:         product.ID,
			VariantID:         variant.ID,
			SupplierVariation: variant.SupplierVariation,
			UnitCostUSD:       variant.UnitCostUSD,
			UnitShippingUSD:   variant.UnitShippingUSD,
		}
		return nil
	})

	// 解析失败：CAS 标记待修复并落异常
	if rerr, ok := AsResolveError(err); ok {
		return s.recordFailure(ctx, order, rerr)
	}

	// 系统级错误（目录查询故障等）：记日志计入失败，不中断批次
	if err != nil {
		log.Printf("[Resolution] 订单 %d 解析出错: %v", order.ID, err)
		return outcomeFailed
	}

	// 解析成功：CAS 写回，未命中说明被并发批次抢先
	if err := s.orderRepo.MarkResolved(ctx, order.ID, matched); err != nil {
		if err == repository.ErrStaleResolution {
			return outcomeSkipped
		}
		log.Printf("[Resolution] 订单 %d 写入解析结果失败: %v", order.ID, err)
		return outcomeFailed
	}
	return outcomeResolved
}

// recordFailure 标记 needs_fix 并把失败交给异常跟踪
func (s *ResolutionService) recordFailure(ctx context.Context, order *model.Order, rerr *ResolveError) resolveOutcome {
	if err := s.orderRepo.MarkNeedsFix(ctx, order.ID); err != nil {
		if err == repository.ErrStaleResolution {
			return outcomeSkipped
		}
		log.Printf("[Resolution] 订单 %d 标记待修复失败: %v", order.ID, err)
		return outcomeFailed
	}

	if _, err := s.exceptions.File(ctx, order, rerr); err != nil {
		// 异常建单失败不改变订单已是 needs_fix 的事实，记日志即可
		log.Printf("[Resolution] 订单 %d 异常建单失败: %v", order.ID, err)
	}
	return outcomeFailed
}

// ==================== 显式重试 ====================

// RetryOrder 外部显式重试：把已出结果的订单拉回 unresolved
// 解析状态只会从 unresolved 出发，所以目录修复后必须先走这里再跑批
func (s *ResolutionService) RetryOrder(ctx context.Context, orderID int64) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("订单不存在: %w", err)
	}
	if order.Status != model.OrderStatusOK {
		return fmt.Errorf("订单 %d 状态为 %s，不允许重试解析", orderID, order.Status)
	}
	if order.ResolutionStatus == model.ResolutionUnresolved {
		return fmt.Errorf("订单 %d 尚未解析，无需重试", orderID)
	}

	if err := s.orderRepo.ResetResolution(ctx, orderID); err != nil {
		return fmt.Errorf("重置解析状态失败: %w", err)
	}
	return nil
}
