package service

import (
	"context"
	"errors"
	"fmt"

	"seller_ops_v1_202608/internal/model"
	"seller_ops_v1_202608/internal/repository"
	"seller_ops_v1_202608/pkg/utils"

	"gorm.io/gorm"
)

// ==================== 解析失败 ====================

// ResolveError 带分类的解析失败
// 属于业务结果而非系统故障：修目录后重试即可恢复，不会让批次中断
type ResolveError struct {
	Kind    model.FailureKind
	Message string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// AsResolveError 判断 err 是否为解析失败
func AsResolveError(err error) (*ResolveError, bool) {
	var rerr *ResolveError
	if errors.As(err, &rerr) {
		return rerr, true
	}
	return nil, false
}

// ==================== ResolverService SKU 映射 + 变体匹配 ====================

// ResolverService 纯计算服务：把订单行的原始 SKU/属性解析到目录身份
// 目录访问全部通过传入的 CatalogReader，调用方负责快照一致性
type ResolverService struct{}

// NewResolverService 创建解析器
func NewResolverService() *ResolverService {
	return &ResolverService{}
}

// ==================== SKU 映射 ====================

// MapSku 精确查 (店铺, 原始 SKU) → 商品
// 刻意不做任何归一化和模糊匹配：SKU 串错会把成本数据挂到错的商品上，
// 宁可落异常队列让人工补映射
func (s *ResolverService) MapSku(ctx context.Context, cat repository.CatalogReader, storeID int64, rawSku string) (*model.Product, error) {
	mapping, err := cat.GetStoreSku(ctx, storeID, rawSku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ResolveError{
				Kind:    model.FailureSkuNotMapped,
				Message: fmt.Sprintf("店铺 %d 没有 SKU %q 的商品映射", storeID, rawSku),
			}
		}
		return nil, fmt.Errorf("查询 SKU 映射失败: %w", err)
	}

	product, err := cat.GetProduct(ctx, mapping.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 映射指向了已不存在的商品，目录侧数据悬挂，按未映射处理
			return nil, &ResolveError{
				Kind:    model.FailureSkuNotMapped,
				Message: fmt.Sprintf("SKU %q 的映射指向不存在的商品 #%d", rawSku, mapping.ProductID),
			}
		}
		return nil, fmt.Errorf("查询商品失败: %w", err)
	}

	return product, nil
}

// ==================== 变体匹配 ====================

// 归一化后的特殊属性值
const (
	attrOneSize = "one size"
	attrDefault = "default"
)

// MatchVariant 有序回退链匹配变体，命中第一个满足的档位即返回：
//  1. 颜色 + 尺码 都相等
//  2. 颜色相等，变体尺码为空或 one size
//  3. 尺码相等，变体颜色为空
//  4. 默认变体（颜色空/default，尺码空/one size/default）
//
// 同一档位多个候选时取 VAR id 最小者，保证两次调用结果一致
func (s *ResolverService) MatchVariant(variants []model.Variant, rawColor, rawSize string) (*model.Variant, error) {
	// 两侧都过归一化比较：变体属性入库时已归一化，这里兜底
	tiers := []func(v *model.Variant) bool{
		// 1. 精确
		func(v *model.Variant) bool {
			return utils.AttrEquals(v.Color, rawColor) && utils.AttrEquals(v.Size, rawSize)
		},
		// 2. 仅颜色
		func(v *model.Variant) bool {
			return utils.AttrEquals(v.Color, rawColor) &&
				(utils.AttrEmpty(v.Size) || utils.AttrEquals(v.Size, attrOneSize))
		},
		// 3. 仅尺码
		func(v *model.Variant) bool {
			return utils.AttrEquals(v.Size, rawSize) && utils.AttrEmpty(v.Color)
		},
		// 4. 默认变体
		func(v *model.Variant) bool {
			colorOK := utils.AttrEmpty(v.Color) || utils.AttrEquals(v.Color, attrDefault)
			sizeOK := utils.AttrEmpty(v.Size) ||
				utils.AttrEquals(v.Size, attrOneSize) || utils.AttrEquals(v.Size, attrDefault)
			return colorOK && sizeOK
		},
	}

	for _, satisfied := range tiers {
		var best *model.Variant
		for i := range variants {
			v := &variants[i]
			if !satisfied(v) {
				continue
			}
			if best == nil || v.VarID < best.VarID {
				best = v
			}
		}
		if best != nil {
			return best, nil
		}
	}

	return nil, &ResolveError{
		Kind:    model.FailureVariantNotFound,
		Message: fmt.Sprintf("没有变体能匹配 颜色=%q 尺码=%q", rawColor, rawSize),
	}
}
