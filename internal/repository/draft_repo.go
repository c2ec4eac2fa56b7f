package repository

import (
	"context"

	"gorm.io/gorm"

	"shopify_feed_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// DraftRepository 草稿批次仓储接口
type DraftRepository interface {
	// 事务内整批写入：批次 + 商品草稿 + 变体草稿
	CreateBatch(ctx context.Context, batch *model.DraftBatch, products []model.DraftProduct, variants []model.DraftVariant) error

	GetBatch(ctx context.Context, batchID string) (*model.DraftBatch, error)
	GetBatchDetail(ctx context.Context, batchID string) (*model.DraftBatch, []model.DraftProduct, []model.DraftVariant, error)
	ListBatches(ctx context.Context, page, pageSize int) ([]model.DraftBatch, int64, error)

	UpdateBatchStatus(ctx context.Context, batchID, status string) error
	SaveUploadReport(ctx context.Context, batchID string, report []byte, status string) error
}

// ==================== 仓储实现 ====================

type draftRepo struct {
	db *gorm.DB
}

// NewDraftRepository 创建草稿仓储
func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &draftRepo{db: db}
}

// CreateBatch 整批落库；任何一步失败整体回滚，不留半成品草稿
func (r *draftRepo) CreateBatch(ctx context.Context, batch *model.DraftBatch, products []model.DraftProduct, variants []model.DraftVariant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(batch).Error; err != nil {
			return err
		}
		for i := range products {
			products[i].BatchRef = batch.ID
			products[i].BatchID = batch.BatchID
		}
		for i := range variants {
			variants[i].BatchRef = batch.ID
			variants[i].BatchID = batch.BatchID
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

func (r *draftRepo) GetBatch(ctx context.Context, batchID string) (*model.DraftBatch, error) {
	var batch model.DraftBatch
	if err := r.db.WithContext(ctx).Where("batch_id = ?", batchID).First(&batch).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// GetBatchDetail 取批次与全部草稿行，按导出顺序返回
func (r *draftRepo) GetBatchDetail(ctx context.Context, batchID string) (*model.DraftBatch, []model.DraftProduct, []model.DraftVariant, error) {
	batch, err := r.GetBatch(ctx, batchID)
	if err != nil {
		return nil, nil, nil, err
	}
	var products []model.DraftProduct
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("sort_index ASC").
		Find(&products).Error; err != nil {
		return nil, nil, nil, err
	}
	var variants []model.DraftVariant
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("sort_index ASC").
		Find(&variants).Error; err != nil {
		return nil, nil, nil, err
	}
	return batch, products, variants, nil
}

func (r *draftRepo) ListBatches(ctx context.Context, page, pageSize int) ([]model.DraftBatch, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.DraftBatch{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var batches []model.DraftBatch
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&batches).Error
	return batches, total, err
}

func (r *draftRepo) UpdateBatchStatus(ctx context.Context, batchID, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.DraftBatch{}).
		Where("batch_id = ?", batchID).
		Update("status", status).Error
}

// SaveUploadReport 保存上传结果报告并更新批次状态
func (r *draftRepo) SaveUploadReport(ctx context.Context, batchID string, report []byte, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.DraftBatch{}).
		Where("batch_id = ?", batchID).
		Updates(map[string]interface{}{
			"upload_report": report,
			"status":        status,
		}).Error
}
