package repository

import (
	"context"

	"gorm.io/gorm"

	"shopify_feed_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// FeedRepository 供应商 Feed 仓储接口
type FeedRepository interface {
	CreateImport(ctx context.Context, imp *model.FeedImport, variants []model.FeedVariant) error
	GetImport(ctx context.Context, importID string) (*model.FeedImport, error)
	LatestImport(ctx context.Context) (*model.FeedImport, error)
	ListVariants(ctx context.Context, importID string) ([]model.FeedVariant, error)
	ListImports(ctx context.Context, limit int) ([]model.FeedImport, error)
}

// ==================== 仓储实现 ====================

type feedRepo struct {
	db *gorm.DB
}

// NewFeedRepository 创建 Feed 仓储
func NewFeedRepository(db *gorm.DB) FeedRepository {
	return &feedRepo{db: db}
}

// CreateImport 事务内写入导入批次与全部变体行
func (r *feedRepo) CreateImport(ctx context.Context, imp *model.FeedImport, variants []model.FeedVariant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(imp).Error; err != nil {
			return err
		}
		if len(variants) == 0 {
			return nil
		}
		for i := range variants {
			variants[i].ImportID = imp.ImportID
		}
		return tx.CreateInBatches(variants, 200).Error
	})
}

func (r *feedRepo) GetImport(ctx context.Context, importID string) (*model.FeedImport, error) {
	var imp model.FeedImport
	if err := r.db.WithContext(ctx).Where("import_id = ?", importID).First(&imp).Error; err != nil {
		return nil, err
	}
	return &imp, nil
}

// LatestImport 最近一次导入批次
func (r *feedRepo) LatestImport(ctx context.Context) (*model.FeedImport, error) {
	var imp model.FeedImport
	if err := r.db.WithContext(ctx).Order("id DESC").First(&imp).Error; err != nil {
		return nil, err
	}
	return &imp, nil
}

// ListVariants 按导入批次取全部变体行，保持写入顺序（稳定输入顺序的基础）
func (r *feedRepo) ListVariants(ctx context.Context, importID string) ([]model.FeedVariant, error) {
	var variants []model.FeedVariant
	err := r.db.WithContext(ctx).
		Where("import_id = ?", importID).
		Order("id ASC").
		Find(&variants).Error
	return variants, err
}

func (r *feedRepo) ListImports(ctx context.Context, limit int) ([]model.FeedImport, error) {
	if limit <= 0 {
		limit = 50
	}
	var imports []model.FeedImport
	err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&imports).Error
	return imports, err
}
