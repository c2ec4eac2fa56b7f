package repository

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopify_feed_v1_202608/internal/model"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(
		&model.FeedImport{}, &model.FeedVariant{},
		&model.PlatformProduct{}, &model.PlatformVariant{},
		&model.DraftBatch{}, &model.DraftProduct{}, &model.DraftVariant{},
		&model.AICallLog{},
	); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	return db
}

func TestFeedRepo_CreateAndListVariants(t *testing.T) {
	repo := NewFeedRepository(setupRepoTestDB(t))
	ctx := context.Background()

	imp := &model.FeedImport{ImportID: "imp-1", SourceFile: "feed.csv", RowCount: 2}
	variants := []model.FeedVariant{
		{StyleCode: "BV0217", ColorCode: "010", SKU: "BV0217-010-M"},
		{StyleCode: "CK9779", ColorCode: "100", SKU: "CK9779-100-S"},
	}
	if err := repo.CreateImport(ctx, imp, variants); err != nil {
		t.Fatalf("CreateImport 失败: %v", err)
	}

	got, err := repo.ListVariants(ctx, "imp-1")
	if err != nil {
		t.Fatalf("ListVariants 失败: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("变体数 = %d, want 2", len(got))
	}
	// 导入批次 ID 回填到每一行，顺序与写入一致
	for i, v := range got {
		if v.ImportID != "imp-1" {
			t.Errorf("got[%d].ImportID = %q", i, v.ImportID)
		}
	}
	if got[0].SKU != "BV0217-010-M" || got[1].SKU != "CK9779-100-S" {
		t.Errorf("顺序不符: [%s %s]", got[0].SKU, got[1].SKU)
	}
}

func TestFeedRepo_GetImport(t *testing.T) {
	repo := NewFeedRepository(setupRepoTestDB(t))
	ctx := context.Background()

	if err := repo.CreateImport(ctx, &model.FeedImport{ImportID: "imp-1"}, nil); err != nil {
		t.Fatalf("CreateImport 失败: %v", err)
	}

	imp, err := repo.GetImport(ctx, "imp-1")
	if err != nil || imp.ImportID != "imp-1" {
		t.Errorf("GetImport = %+v, %v", imp, err)
	}
	if _, err := repo.GetImport(ctx, "nope"); err == nil {
		t.Error("不存在的批次应报错")
	}
}

func TestFeedRepo_LatestImport(t *testing.T) {
	repo := NewFeedRepository(setupRepoTestDB(t))
	ctx := context.Background()

	for _, id := range []string{"imp-1", "imp-2", "imp-3"} {
		if err := repo.CreateImport(ctx, &model.FeedImport{ImportID: id}, nil); err != nil {
			t.Fatalf("CreateImport 失败: %v", err)
		}
	}

	latest, err := repo.LatestImport(ctx)
	if err != nil {
		t.Fatalf("LatestImport 失败: %v", err)
	}
	if latest.ImportID != "imp-3" {
		t.Errorf("LatestImport = %s, want imp-3", latest.ImportID)
	}
}

func TestFeedRepo_ListImports(t *testing.T) {
	repo := NewFeedRepository(setupRepoTestDB(t))
	ctx := context.Background()

	for _, id := range []string{"imp-1", "imp-2", "imp-3"} {
		if err := repo.CreateImport(ctx, &model.FeedImport{ImportID: id}, nil); err != nil {
			t.Fatalf("CreateImport 失败: %v", err)
		}
	}

	imports, err := repo.ListImports(ctx, 2)
	if err != nil {
		t.Fatalf("ListImports 失败: %v", err)
	}
	// 新的在前
	if len(imports) != 2 || imports[0].ImportID != "imp-3" || imports[1].ImportID != "imp-2" {
		t.Errorf("ListImports = %+v", imports)
	}

	all, err := repo.ListImports(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Errorf("默认上限应返回全部: %d, %v", len(all), err)
	}
}
