package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopify_feed_v1_202608/internal/model"
	"shopify_feed_v1_202608/internal/repository"
)

func setupSnapshotTest(t *testing.T, client PlatformClient) (*SnapshotService, repository.SnapshotRepository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.PlatformProduct{}, &model.PlatformVariant{}); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	repo := repository.NewSnapshotRepository(db)
	return NewSnapshotService(client, repo), repo
}

func TestRefresh_ReplacesSnapshot(t *testing.T) {
	ctx := context.Background()
	client := &mockPlatformClient{
		fetchSnapshotFn: func(ctx context.Context) ([]model.PlatformProduct, []model.PlatformVariant, error) {
			products := []model.PlatformProduct{
				{ProductID: 1, Handle: "nike-bv0217", Title: "Nike Polo"},
				{ProductID: 2, Handle: "nike-ck9779", Title: "Nike Tee"},
			}
			variants := []model.PlatformVariant{
				{ProductID: 1, VariantID: 11, SKU: "BV0217-010-M"},
			}
			return products, variants, nil
		},
	}
	svc, repo := setupSnapshotTest(t, client)

	// 预置一条旧快照，Refresh 后应被整体替换
	if err := repo.ReplaceAll(ctx, []model.PlatformProduct{
		{ProductID: 99, Handle: "stale", Title: "Stale"},
	}, nil); err != nil {
		t.Fatalf("ReplaceAll 失败: %v", err)
	}

	pc, vc, err := svc.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh 失败: %v", err)
	}
	if pc != 2 || vc != 1 {
		t.Errorf("计数 = %d/%d, want 2/1", pc, vc)
	}

	products, total, err := repo.ListProducts(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListProducts 失败: %v", err)
	}
	if total != 2 || len(products) != 2 {
		t.Fatalf("快照商品数 = %d", total)
	}
	if products[0].ProductID != 1 || products[1].ProductID != 2 {
		t.Errorf("旧快照未被替换: %+v", products)
	}

	skus, err := repo.AllSKUs(ctx)
	if err != nil {
		t.Fatalf("AllSKUs 失败: %v", err)
	}
	if !skus["bv0217-010-m"] {
		t.Errorf("SKU 集合不符: %v", skus)
	}
}

func TestRefresh_FetchFailureKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	client := &mockPlatformClient{
		fetchSnapshotFn: func(ctx context.Context) ([]model.PlatformProduct, []model.PlatformVariant, error) {
			return nil, nil, errors.New("network down")
		},
	}
	svc, repo := setupSnapshotTest(t, client)

	if err := repo.ReplaceAll(ctx, []model.PlatformProduct{
		{ProductID: 1, Handle: "nike-bv0217", Title: "Nike Polo"},
	}, nil); err != nil {
		t.Fatalf("ReplaceAll 失败: %v", err)
	}

	if _, _, err := svc.Refresh(ctx); err == nil {
		t.Fatal("拉取失败应报错")
	}

	// 旧快照保持不动
	count, err := repo.CountProducts(ctx)
	if err != nil {
		t.Fatalf("CountProducts 失败: %v", err)
	}
	if count != 1 {
		t.Errorf("快照商品数 = %d, want 1", count)
	}
}
