package service

import (
	"context"
	"errors"
	"fmt"

	"seller_ops_v1_202608/internal/model"
	"seller_ops_v1_202608/internal/repository"

	"gorm.io/gorm"
)

// ==================== ExceptionService 异常跟踪 ====================

// ExceptionService 解析异常的建单与处理
type ExceptionService struct {
	excRepo repository.ExceptionRepository
}

// NewExceptionService 创建异常服务
func NewExceptionService(excRepo repository.ExceptionRepository) *ExceptionService {
	return &ExceptionService{excRepo: excRepo}
}

// ==================== 建单 ====================

// File 为解析失败的订单建异常单
// 同一订单已有未关闭异常时不再新建，改为覆盖其失败上下文
// （多次跑批不会把异常队列刷成重复单）
func (s *ExceptionService) File(ctx context.Context, order *model.Order, rerr *ResolveError) (*model.Exception, error) {
	existing, err := s.excRepo.GetOpenByOrderID(ctx, order.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询既有异常失败: %w", err)
	}

	if existing != nil {
		existing.Kind = rerr.Kind
		existing.Issue = rerr.Message
		existing.Category = rerr.Kind.SuggestedCategory()
		existing.RawColor = order.RawColor
		existing.RawSize = order.RawSize
		if err := s.excRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("更新异常失败: %w", err)
		}
		return existing, nil
	}

	exc := &model.Exception{
		OrderID:  order.ID,
		StoreID:  order.StoreID,
		RawSKU:   order.RawSKU,
		RawColor: order.RawColor,
		RawSize:  order.RawSize,
		Kind:     rerr.Kind,
		Issue:    rerr.Message,
		Category: rerr.Kind.SuggestedCategory(),
		Resolved: false,
	}
	if err := s.excRepo.Create(ctx, exc); err != nil {
		return nil, fmt.Errorf("创建异常失败: %w", err)
	}
	return exc, nil
}

// ==================== 人工处理 ====================

// List 异常列表
func (s *ExceptionService) List(ctx context.Context, filter repository.ExceptionFilter) ([]model.Exception, int64, error) {
	return s.excRepo.List(ctx, filter)
}

// Resolve 关闭异常，记录处理人
func (s *ExceptionService) Resolve(ctx context.Context, id int64, resolvedBy string) error {
	exc, err := s.excRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("异常不存在: %w", err)
	}
	if exc.Resolved {
		return fmt.Errorf("异常 %d 已关闭", id)
	}
	return s.excRepo.MarkResolved(ctx, id, resolvedBy)
}

// Reopen 重新打开异常
func (s *ExceptionService) Reopen(ctx context.Context, id int64) error {
	if _, err := s.excRepo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("异常不存在: %w", err)
	}
	return s.excRepo.Reopen(ctx, id)
}

// Delete 删除异常
func (s *ExceptionService) Delete(ctx context.Context, id int64) error {
	return s.excRepo.Delete(ctx, id)
}

// CountOpen 未关闭异常数（处理界面角标用）
func (s *ExceptionService) CountOpen(ctx context.Context) (int64, error) {
	return s.excRepo.CountOpen(ctx)
}
