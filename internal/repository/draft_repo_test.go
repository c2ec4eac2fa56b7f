package repository

import (
	"context"
	"testing"

	"shopify_feed_v1_202608/internal/model"
)

func seedDraftBatch(t *testing.T, repo DraftRepository, batchID string) *model.DraftBatch {
	t.Helper()
	batch := &model.DraftBatch{BatchID: batchID, Status: model.BatchStatusDraft, ImportID: "imp-1", ProductCount: 2, VariantCount: 2}
	products := []model.DraftProduct{
		{StyleCode: "CK9779", Title: "Nike Tee", SortIndex: 1, Tags: []string{"Nike", "CK9779"}},
		{StyleCode: "BV0217", Title: "Nike Polo", SortIndex: 0, Tags: []string{"Nike", "BV0217"}},
	}
	variants := []model.DraftVariant{
		{StyleCode: "CK9779", StyleColor: "CK9779-010", SKU: "CK9779-010-S", SortIndex: 1},
		{StyleCode: "BV0217", StyleColor: "BV0217-010", SKU: "BV0217-010-M", SortIndex: 0},
	}
	if err := repo.CreateBatch(context.Background(), batch, products, variants); err != nil {
		t.Fatalf("CreateBatch 失败: %v", err)
	}
	return batch
}

func TestDraftRepo_CreateAndGetDetail(t *testing.T) {
	repo := NewDraftRepository(setupRepoTestDB(t))
	ctx := context.Background()
	seedDraftBatch(t, repo, "batch-1")

	batch, products, variants, err := repo.GetBatchDetail(ctx, "batch-1")
	if err != nil {
		t.Fatalf("GetBatchDetail 失败: %v", err)
	}
	if batch.Status != model.BatchStatusDraft || batch.ProductCount != 2 {
		t.Errorf("批次不符: %+v", batch)
	}

	// 草稿行回填批次标识，读取按导出顺序
	if len(products) != 2 || products[0].StyleCode != "BV0217" || products[1].StyleCode != "CK9779" {
		t.Errorf("产品顺序不符: %+v", products)
	}
	if products[0].BatchID != "batch-1" || products[0].BatchRef != batch.ID {
		t.Errorf("批次标识未回填: %+v", products[0])
	}
	if len(variants) != 2 || variants[0].SKU != "BV0217-010-M" {
		t.Errorf("变体顺序不符: %+v", variants)
	}

	// 标签数组完整往返
	if len(products[0].Tags) != 2 || products[0].Tags[0] != "Nike" || products[0].Tags[1] != "BV0217" {
		t.Errorf("标签往返不符: %v", products[0].Tags)
	}
}

func TestDraftRepo_ListBatches(t *testing.T) {
	repo := NewDraftRepository(setupRepoTestDB(t))
	ctx := context.Background()
	seedDraftBatch(t, repo, "batch-1")
	seedDraftBatch(t, repo, "batch-2")

	batches, total, err := repo.ListBatches(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListBatches 失败: %v", err)
	}
	if total != 2 || batches[0].BatchID != "batch-2" {
		t.Errorf("列表不符: total=%d %+v", total, batches)
	}
}

func TestDraftRepo_UpdateStatusAndReport(t *testing.T) {
	repo := NewDraftRepository(setupRepoTestDB(t))
	ctx := context.Background()
	seedDraftBatch(t, repo, "batch-1")

	if err := repo.UpdateBatchStatus(ctx, "batch-1", model.BatchStatusFailed); err != nil {
		t.Fatalf("UpdateBatchStatus 失败: %v", err)
	}
	batch, err := repo.GetBatch(ctx, "batch-1")
	if err != nil || batch.Status != model.BatchStatusFailed {
		t.Errorf("状态 = %s, %v", batch.Status, err)
	}

	report := []byte(`[{"style_code":"BV0217","status":"created"}]`)
	if err := repo.SaveUploadReport(ctx, "batch-1", report, model.BatchStatusUploaded); err != nil {
		t.Fatalf("SaveUploadReport 失败: %v", err)
	}
	batch, err = repo.GetBatch(ctx, "batch-1")
	if err != nil {
		t.Fatalf("GetBatch 失败: %v", err)
	}
	if batch.Status != model.BatchStatusUploaded {
		t.Errorf("状态 = %s", batch.Status)
	}
	if string(batch.UploadReport) != string(report) {
		t.Errorf("报告 = %s", batch.UploadReport)
	}
}
