package service

import (
	"context"
	"fmt"
	"log"

	"shopify_feed_v1_202608/internal/model"
	"shopify_feed_v1_202608/internal/repository"
)

// PlatformClient 平台侧操作集合，便于测试替身注入
type PlatformClient interface {
	FetchSnapshot(ctx context.Context) ([]model.PlatformProduct, []model.PlatformVariant, error)
	GetLocations(ctx context.Context) ([]ShopifyLocation, error)
	CreateProduct(ctx context.Context, product *ShopifyProduct) (*ShopifyProduct, error)
	CreateVariant(ctx context.Context, productID int64, variant *ShopifyVariant) (*ShopifyVariant, error)
	UpdateProductTags(ctx context.Context, productID int64, tags string) error
	PublishProduct(ctx context.Context, productID int64) error
	SetInventoryLevel(ctx context.Context, locationID, inventoryItemID int64, available int) error
	UpdateInventoryItemCost(ctx context.Context, inventoryItemID int64, cost float64) error
}

var _ PlatformClient = (*ShopifyClient)(nil)

// SnapshotService 平台快照服务：全量拉取并整体替换本地镜像
type SnapshotService struct {
	client       PlatformClient
	snapshotRepo repository.SnapshotRepository
}

func NewSnapshotService(client PlatformClient, snapshotRepo repository.SnapshotRepository) *SnapshotService {
	return &SnapshotService{client: client, snapshotRepo: snapshotRepo}
}

// Refresh 拉取平台全量商品并替换本地快照
func (s *SnapshotService) Refresh(ctx context.Context) (int, int, error) {
	products, variants, err := s.client.FetchSnapshot(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("拉取平台快照失败: %w", err)
	}
	if err := s.snapshotRepo.ReplaceAll(ctx, products, variants); err != nil {
		return 0, 0, fmt.Errorf("保存快照失败: %w", err)
	}
	log.Printf("[SnapshotService] 快照已更新: %d 商品 %d 变体", len(products), len(variants))
	return len(products), len(variants), nil
}
