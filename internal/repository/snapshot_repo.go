package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopify_feed_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// SnapshotRepository 平台快照仓储接口
type SnapshotRepository interface {
	// 全量替换（定时同步使用）
	ReplaceAll(ctx context.Context, products []model.PlatformProduct, variants []model.PlatformVariant) error
	// 增量合并
	UpsertProducts(ctx context.Context, products []model.PlatformProduct) error

	// 冲突检测 / 已上架判断
	AllTitles(ctx context.Context) ([]string, error)
	AllSKUs(ctx context.Context) (map[string]bool, error)
	SearchText(ctx context.Context) ([]string, error)

	ListProducts(ctx context.Context, page, pageSize int) ([]model.PlatformProduct, int64, error)
	CountProducts(ctx context.Context) (int64, error)
}

// ==================== 仓储实现 ====================

type snapshotRepo struct {
	db *gorm.DB
}

// NewSnapshotRepository 创建平台快照仓储
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepo{db: db}
}

// ReplaceAll 事务内全量替换镜像表
func (r *snapshotRepo) ReplaceAll(ctx context.Context, products []model.PlatformProduct, variants []model.PlatformVariant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Unscoped().Delete(&model.PlatformVariant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Unscoped().Delete(&model.PlatformProduct{}).Error; err != nil {
			return err
		}
		if len(products) > 0 {
			if err := tx.CreateInBatches(products, 200).Error; err != nil {
				return err
			}
		}
		if len(variants) > 0 {
			if err := tx.CreateInBatches(variants, 200).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *snapshotRepo) UpsertProducts(ctx context.Context, products []model.PlatformProduct) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"handle", "title", "vendor", "tags", "updated_at"}),
	}).CreateInBatches(products, 200).Error
}

// AllTitles 平台现有标题集合（标题去重的外部事实来源）
func (r *snapshotRepo) AllTitles(ctx context.Context) ([]string, error) {
	var titles []string
	err := r.db.WithContext(ctx).
		Model(&model.PlatformProduct{}).
		Pluck("title", &titles).Error
	return titles, err
}

// AllSKUs 平台现有 SKU 集合（小写），候选管线"已上架"判断使用
func (r *snapshotRepo) AllSKUs(ctx context.Context) (map[string]bool, error) {
	var skus []string
	err := r.db.WithContext(ctx).
		Model(&model.PlatformVariant{}).
		Where("sku <> ''").
		Pluck("sku", &skus).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(skus))
	for _, s := range skus {
		out[strings.ToLower(strings.TrimSpace(s))] = true
	}
	return out, nil
}

// SearchText 每个商品的 tags+handle+title 拼接文本（小写），款式存在性检查使用
func (r *snapshotRepo) SearchText(ctx context.Context) ([]string, error) {
	var products []model.PlatformProduct
	if err := r.db.WithContext(ctx).Find(&products).Error; err != nil {
		return nil, err
	}
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, strings.ToLower(p.Tags+" "+p.Handle+" "+p.Title))
	}
	return out, nil
}

func (r *snapshotRepo) ListProducts(ctx context.Context, page, pageSize int) ([]model.PlatformProduct, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.PlatformProduct{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var products []model.PlatformProduct
	err := r.db.WithContext(ctx).
		Order("product_id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&products).Error
	return products, total, err
}

func (r *snapshotRepo) CountProducts(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.PlatformProduct{}).Count(&total).Error
	return total, err
}
