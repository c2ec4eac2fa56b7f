package service

import (
	"context"
	"math"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopify_feed_v1_202608/internal/model"
	"shopify_feed_v1_202608/internal/repository"
)

func setupCandidateTest(t *testing.T) (*CandidateService, repository.FeedRepository, repository.SnapshotRepository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.FeedImport{}, &model.FeedVariant{},
		&model.PlatformProduct{}, &model.PlatformVariant{}); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	feedRepo := repository.NewFeedRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	return NewCandidateService(feedRepo, snapshotRepo), feedRepo, snapshotRepo
}

func TestScoreRow(t *testing.T) {
	tests := []struct {
		name      string
		inventory int
		sizes     map[string]int
		wantStock float64
		wantDist  float64
		wantLabel string
	}{
		{"库存封顶", 60, map[string]int{"S": 20, "M": 20, "L": 20}, 100, (1 - 20.0/60.0) * 100, "Balanced"},
		{"半量库存", 15, map[string]int{"S": 5, "M": 5, "L": 5}, 50, (1 - 5.0/15.0) * 100, "Balanced"},
		{"单尺码全偏", 10, map[string]int{"M": 10}, 10.0 / 30.0 * 100, 0, "Skewed"},
		{"中等分布", 10, map[string]int{"M": 7, "L": 3}, 10.0 / 30.0 * 100, (1 - 7.0/10.0) * 100, "Mixed"},
		{"无尺码信息", 5, nil, 5.0 / 30.0 * 100, 0, "Skewed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := &CandidateRow{TotalInventory: tt.inventory, SizeBreakdown: tt.sizes}
			scoreRow(row)
			// 浮点得分按容差比较
			if math.Abs(row.ScoreStock-tt.wantStock) > 1e-9 || math.Abs(row.ScoreTotal-tt.wantStock) > 1e-9 {
				t.Errorf("ScoreStock = %v, want %v", row.ScoreStock, tt.wantStock)
			}
			if math.Abs(row.SizeDistScore-tt.wantDist) > 1e-9 {
				t.Errorf("SizeDistScore = %v, want %v", row.SizeDistScore, tt.wantDist)
			}
			if row.SizeDistribution != tt.wantLabel {
				t.Errorf("SizeDistribution = %s, want %s", row.SizeDistribution, tt.wantLabel)
			}
		})
	}
}

func TestBuildReport(t *testing.T) {
	svc, feedRepo, snapshotRepo := setupCandidateTest(t)
	ctx := context.Background()

	imp := &model.FeedImport{ImportID: "imp-1", SourceFile: "feed.csv"}
	variants := []model.FeedVariant{
		// 高库存新款色；同一 SKU 拆成两行出货
		{StyleCode: "BV0217", ColorCode: "382", SKU: "BV0217-382-M", RawSize: "MEDIUM", Quantity: 12, Vendor: "NIKE - Golf", ItemType: "NIKE - Golf : Apparel"},
		{StyleCode: "BV0217", ColorCode: "382", SKU: "BV0217-382-M", RawSize: "MEDIUM", Quantity: 8},
		{StyleCode: "BV0217", ColorCode: "382", SKU: "BV0217-382-L", RawSize: "LARGE", Quantity: 15},
		// 低库存新款色；款式文本已在平台出现 -> 潜在新颜色
		{StyleCode: "CK9779", ColorCode: "010", SKU: "CK9779-010-S", RawSize: "SMALL", Quantity: 3},
		// 已上架（SKU 在快照中，大小写不敏感）
		{StyleCode: "DH3260", ColorCode: "451", SKU: "DH3260-451-8", RawSize: "8", Quantity: 10},
		// 高尔夫鞋排除
		{StyleCode: "GF0001", ColorCode: "100", SKU: "GF0001-100-9", Quantity: 50, ItemType: "NIKE - Golf : Shoes"},
		// 零库存排除
		{StyleCode: "ZZ9999", ColorCode: "657", SKU: "ZZ9999-657-M", Quantity: 0},
	}
	if err := feedRepo.CreateImport(ctx, imp, variants); err != nil {
		t.Fatalf("CreateImport 失败: %v", err)
	}

	products := []model.PlatformProduct{
		{ProductID: 1, Handle: "nike-ck9779", Title: "Nike Flex Short", Tags: "Nike, CK9779"},
	}
	pvariants := []model.PlatformVariant{
		{ProductID: 1, VariantID: 11, SKU: "dh3260-451-8"},
	}
	if err := snapshotRepo.ReplaceAll(ctx, products, pvariants); err != nil {
		t.Fatalf("ReplaceAll 失败: %v", err)
	}

	report, err := svc.BuildReport(ctx, "imp-1")
	if err != nil {
		t.Fatalf("BuildReport 失败: %v", err)
	}

	if len(report.New) != 2 {
		t.Fatalf("新候选数 = %d, want 2", len(report.New))
	}
	// 总分降序：BV0217(库存35->封顶100分) 在 CK9779(库存3) 之前
	if report.New[0].StyleCode != "BV0217" || report.New[1].StyleCode != "CK9779" {
		t.Errorf("新候选顺序 = [%s %s]", report.New[0].StyleCode, report.New[1].StyleCode)
	}
	if report.New[0].ScoreTotal != 100 {
		t.Errorf("封顶得分 = %.2f, want 100", report.New[0].ScoreTotal)
	}
	// SKU 去重后计数：三行出货只有两个不同 SKU
	if report.New[0].TotalInventory != 35 || report.New[0].SKUCount != 2 {
		t.Errorf("聚合不符: inventory=%d skus=%d", report.New[0].TotalInventory, report.New[0].SKUCount)
	}
	if report.New[0].SampleSKU != "BV0217-382-L" {
		t.Errorf("SampleSKU = %s", report.New[0].SampleSKU)
	}

	// CK9779 款式文本在快照中出现 -> 标记潜在新颜色
	if !report.New[1].NewColor {
		t.Error("CK9779 应标记为潜在新颜色")
	}
	if report.New[0].NewColor {
		t.Error("BV0217 不应标记为潜在新颜色")
	}

	// DH3260 SKU 命中快照 -> 已上架
	if len(report.Already) != 1 || report.Already[0].StyleCode != "DH3260" {
		t.Fatalf("已上架列表不符: %+v", report.Already)
	}
}

func TestBuildReport_AlreadySortOrder(t *testing.T) {
	svc, feedRepo, snapshotRepo := setupCandidateTest(t)
	ctx := context.Background()

	imp := &model.FeedImport{ImportID: "imp-2"}
	variants := []model.FeedVariant{
		{StyleCode: "AA1111", ColorCode: "010", SKU: "AA1111-010-M", Quantity: 20},
		{StyleCode: "BB2222", ColorCode: "100", SKU: "BB2222-100-M", Quantity: 5},
	}
	if err := feedRepo.CreateImport(ctx, imp, variants); err != nil {
		t.Fatalf("CreateImport 失败: %v", err)
	}
	pvariants := []model.PlatformVariant{
		{ProductID: 1, VariantID: 1, SKU: "AA1111-010-M"},
		{ProductID: 1, VariantID: 2, SKU: "BB2222-100-M"},
	}
	if err := snapshotRepo.ReplaceAll(ctx, nil, pvariants); err != nil {
		t.Fatalf("ReplaceAll 失败: %v", err)
	}

	report, err := svc.BuildReport(ctx, "imp-2")
	if err != nil {
		t.Fatalf("BuildReport 失败: %v", err)
	}
	// 已上架按库存升序（低库存 = 急需补货，排前面）
	if len(report.Already) != 2 || report.Already[0].StyleCode != "BB2222" {
		t.Errorf("已上架排序不符: %+v", report.Already)
	}
}

func TestStyleExistsInText(t *testing.T) {
	texts := []string{"nike, ck9779 nike-ck9779 nike flex short"}
	if !styleExistsInText(texts, "CK9779") {
		t.Error("大小写不敏感匹配失败")
	}
	if styleExistsInText(texts, "ZZ9999") {
		t.Error("不存在的款式不应命中")
	}
	if styleExistsInText(texts, " ") {
		t.Error("空款式编码不应命中")
	}
}
