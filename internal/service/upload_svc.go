package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"shopify_feed_v1_202608/internal/api/dto"
	"shopify_feed_v1_202608/internal/model"
	"shopify_feed_v1_202608/internal/repository"
)

// ==================== 批次上传服务 ====================
// 把审核通过的草稿批次推送到平台：同 Handle 已存在时走补充模式
// （合并标签 + 追加缺失变体），否则整款新建，再回填库存与成本。

// UploadService 批次上传服务
type UploadService struct {
	client    PlatformClient
	draftRepo repository.DraftRepository
}

func NewUploadService(client PlatformClient, draftRepo repository.DraftRepository) *UploadService {
	return &UploadService{client: client, draftRepo: draftRepo}
}

// UploadBatch 上传一个草稿批次，并把逐款报告落到批次记录上
func (s *UploadService) UploadBatch(ctx context.Context, batchID string, req *dto.UploadBatchRequest) (*dto.UploadBatchResult, error) {
	batch, products, variants, err := s.draftRepo.GetBatchDetail(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("读取草稿批次失败: %w", err)
	}
	if batch.Status == model.BatchStatusUploaded {
		return nil, fmt.Errorf("批次 %s 已上传，不可重复上传", batchID)
	}

	publishStatus := req.PublishStatus
	if publishStatus == "" {
		publishStatus = "draft"
	}
	if publishStatus != "draft" && publishStatus != "active" {
		return nil, fmt.Errorf("不支持的上架状态: %s", publishStatus)
	}

	// 现有商品索引：Handle 查重、SKU 去重、标签合并
	handleToPID := map[string]int64{}
	pidSKUs := map[int64]map[string]bool{}
	pidTags := map[int64]string{}
	snapProducts, snapVariants, err := s.client.FetchSnapshot(ctx)
	if err != nil {
		log.Printf("[UploadService] 拉取现有商品失败，跳过查重直接新建: %v", err)
	} else {
		for _, p := range snapProducts {
			handleToPID[p.Handle] = p.ProductID
			pidTags[p.ProductID] = p.Tags
		}
		for _, v := range snapVariants {
			if v.SKU == "" {
				continue
			}
			if pidSKUs[v.ProductID] == nil {
				pidSKUs[v.ProductID] = map[string]bool{}
			}
			pidSKUs[v.ProductID][v.SKU] = true
		}
	}

	var locations []ShopifyLocation
	if !req.SkipInventory {
		locations, err = s.client.GetLocations(ctx)
		if err != nil {
			log.Printf("[UploadService] 查询库存地点失败，本次不写库存: %v", err)
			locations = nil
		}
	}

	variantsByStyle := map[string][]model.DraftVariant{}
	for _, v := range variants {
		variantsByStyle[v.StyleCode] = append(variantsByStyle[v.StyleCode], v)
	}

	result := &dto.UploadBatchResult{BatchID: batchID}
	for _, prod := range products {
		group := variantsByStyle[prod.StyleCode]
		if len(group) == 0 {
			result.Records = append(result.Records, dto.UploadRecord{
				StyleCode: prod.StyleCode,
				Status:    model.UploadStatusError,
				Reason:    "草稿中没有该款的变体行",
			})
			result.Errors++
			continue
		}

		if pid, exists := handleToPID[prod.Handle]; exists {
			rec := s.appendToExisting(ctx, pid, prod, group, pidSKUs[pid], pidTags[pid], req, locations)
			if publishStatus == "active" {
				if err := s.client.PublishProduct(ctx, pid); err != nil {
					log.Printf("[UploadService] 商品 %d 发布失败: %v", pid, err)
				}
			}
			result.Records = append(result.Records, rec)
			result.Updated++
			continue
		}

		rec := s.createProduct(ctx, prod, group, publishStatus, req, locations)
		result.Records = append(result.Records, rec)
		if rec.Status == model.UploadStatusError {
			result.Errors++
		} else {
			result.Created++
		}
	}

	status := model.BatchStatusUploaded
	if result.Errors > 0 && result.Created == 0 && result.Updated == 0 {
		status = model.BatchStatusFailed
	}
	result.Status = status

	report, _ := json.Marshal(result.Records)
	if err := s.draftRepo.SaveUploadReport(ctx, batchID, report, status); err != nil {
		return nil, fmt.Errorf("保存上传报告失败: %w", err)
	}
	log.Printf("[UploadService] 批次 %s 上传完成: 新建 %d 补充 %d 失败 %d",
		batchID, result.Created, result.Updated, result.Errors)
	return result, nil
}

// createProduct 整款新建，变体按草稿排序契约原序提交
func (s *UploadService) createProduct(
	ctx context.Context,
	prod model.DraftProduct,
	group []model.DraftVariant,
	publishStatus string,
	req *dto.UploadBatchRequest,
	locations []ShopifyLocation,
) dto.UploadRecord {
	payload := &ShopifyProduct{
		Title:   prod.Title,
		Handle:  prod.Handle,
		Vendor:  prod.Vendor,
		Tags:    strings.Join(prod.Tags, ", "),
		Status:  publishStatus,
		Options: []ShopifyOption{{Name: "Color"}, {Name: "Size"}},
	}
	for _, v := range group {
		payload.Variants = append(payload.Variants, *buildVariantPayload(&v))
	}

	created, err := s.client.CreateProduct(ctx, payload)
	if err != nil {
		log.Printf("[UploadService] 款式 %s 创建失败: %v", prod.StyleCode, err)
		return dto.UploadRecord{StyleCode: prod.StyleCode, Status: model.UploadStatusError, Reason: err.Error()}
	}

	createdBySKU := map[string]*ShopifyVariant{}
	for i := range created.Variants {
		createdBySKU[created.Variants[i].SKU] = &created.Variants[i]
	}
	for _, v := range group {
		cv := createdBySKU[v.SKU]
		if cv == nil {
			continue
		}
		s.fillVariantDetails(ctx, cv.InventoryItemID, &v, req, locations)
	}

	if publishStatus == "active" {
		if err := s.client.PublishProduct(ctx, created.ID); err != nil {
			log.Printf("[UploadService] 商品 %d 发布失败: %v", created.ID, err)
		}
	}
	return dto.UploadRecord{
		StyleCode:    prod.StyleCode,
		Status:       model.UploadStatusCreated,
		ProductID:    created.ID,
		Handle:       created.Handle,
		VariantCount: len(created.Variants),
	}
}

// appendToExisting 补充模式：合并标签后只追加平台上不存在的 SKU
func (s *UploadService) appendToExisting(
	ctx context.Context,
	pid int64,
	prod model.DraftProduct,
	group []model.DraftVariant,
	existingSKUs map[string]bool,
	priorTags string,
	req *dto.UploadBatchRequest,
	locations []ShopifyLocation,
) dto.UploadRecord {
	merged := mergeTags(priorTags, prod.Tags)
	if err := s.client.UpdateProductTags(ctx, pid, merged); err != nil {
		log.Printf("[UploadService] 商品 %d 标签更新失败: %v", pid, err)
	}

	added := 0
	for _, v := range group {
		if v.SKU == "" || existingSKUs[v.SKU] {
			continue
		}
		created, err := s.client.CreateVariant(ctx, pid, buildVariantPayload(&v))
		if err != nil {
			log.Printf("[UploadService] 款式 %s SKU %s 追加失败: %v", prod.StyleCode, v.SKU, err)
			continue
		}
		s.fillVariantDetails(ctx, created.InventoryItemID, &v, req, locations)
		added++
	}
	return dto.UploadRecord{
		StyleCode:     prod.StyleCode,
		Status:        model.UploadStatusUpdated,
		ProductID:     pid,
		Handle:        prod.Handle,
		AddedVariants: added,
	}
}

// fillVariantDetails 回填成本与各地点库存，单项失败只告警不中断
func (s *UploadService) fillVariantDetails(
	ctx context.Context,
	inventoryItemID int64,
	v *model.DraftVariant,
	req *dto.UploadBatchRequest,
	locations []ShopifyLocation,
) {
	if inventoryItemID == 0 {
		return
	}
	if !req.SkipCost && v.Cost != nil {
		if err := s.client.UpdateInventoryItemCost(ctx, inventoryItemID, *v.Cost); err != nil {
			log.Printf("[UploadService] SKU %s 成本写入失败: %v", v.SKU, err)
		}
	}
	if !req.SkipInventory {
		for _, loc := range locations {
			if err := s.client.SetInventoryLevel(ctx, loc.ID, inventoryItemID, v.Quantity); err != nil {
				log.Printf("[UploadService] SKU %s 地点 %d 库存写入失败: %v", v.SKU, loc.ID, err)
			}
		}
	}
}

func buildVariantPayload(v *model.DraftVariant) *ShopifyVariant {
	size := v.Size
	if size == "" {
		size = "Default"
	}
	payload := &ShopifyVariant{
		Option1:       v.ColorName,
		Option2:       size,
		SKU:           v.SKU,
		InventoryMgmt: "shopify",
		Fulfillment:   "manual",
	}
	if v.Price != nil {
		payload.Price = strconv.FormatFloat(*v.Price, 'f', 2, 64)
	}
	return payload
}

// mergeTags 新旧标签去重合并，排序后输出
func mergeTags(prior string, fresh []string) string {
	set := map[string]bool{}
	for _, t := range strings.Split(prior, ",") {
		if t = strings.TrimSpace(t); t != "" {
			set[t] = true
		}
	}
	for _, t := range fresh {
		if t = strings.TrimSpace(t); t != "" {
			set[t] = true
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
