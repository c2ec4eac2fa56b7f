package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"shopify_feed_v1_202608/internal/api/dto"
	"shopify_feed_v1_202608/internal/model"
	"shopify_feed_v1_202608/internal/repository"
	"shopify_feed_v1_202608/internal/rules"
)

// ListingService 串联完整的草稿生成流水线：
// 选择过滤 -> 按款聚合 -> 颜色解析 -> 分类打标 -> 标题去重 -> 落库
type ListingService struct {
	brand    string
	rulesDir string

	feedRepo     repository.FeedRepository
	snapshotRepo repository.SnapshotRepository
	draftRepo    repository.DraftRepository

	aggregator *AggregatorService
	normalizer *NormalizerService
	classifier *ClassifierService
	dedup      *DedupService
	suggester  ColorSuggester
}

func NewListingService(
	brand, rulesDir string,
	feedRepo repository.FeedRepository,
	snapshotRepo repository.SnapshotRepository,
	draftRepo repository.DraftRepository,
	aggregator *AggregatorService,
	normalizer *NormalizerService,
	classifier *ClassifierService,
	dedup *DedupService,
	suggester ColorSuggester,
) *ListingService {
	return &ListingService{
		brand:        brand,
		rulesDir:     rulesDir,
		feedRepo:     feedRepo,
		snapshotRepo: snapshotRepo,
		draftRepo:    draftRepo,
		aggregator:   aggregator,
		normalizer:   normalizer,
		classifier:   classifier,
		dedup:        dedup,
		suggester:    suggester,
	}
}

// PrepareDraft 生成一个草稿批次。selections 为控制器解析好的额外选择项
// （来自上传的选择文件），与请求体里的 SKU / 编码过滤叠加生效。
func (s *ListingService) PrepareDraft(ctx context.Context, req *dto.PrepareDraftRequest, selections []Selection) (*dto.PrepareDraftResult, error) {
	importID := req.ImportID
	if importID == "" {
		latest, err := s.feedRepo.LatestImport(ctx)
		if err != nil {
			return nil, fmt.Errorf("查询最近导入失败: %w", err)
		}
		importID = latest.ImportID
	}

	variants, err := s.feedRepo.ListVariants(ctx, importID)
	if err != nil {
		return nil, fmt.Errorf("读取导入行失败: %w", err)
	}
	if len(variants) == 0 {
		return nil, fmt.Errorf("导入 %s 没有可用数据行", importID)
	}

	rs, err := rules.Load(s.rulesDir)
	if err != nil {
		return nil, fmt.Errorf("加载规则表失败: %w", err)
	}

	if len(req.SelectCodes) > 0 {
		parsed, err := ParseSelectionCodes(req.SelectCodes)
		if err != nil {
			return nil, err
		}
		selections = append(selections, parsed...)
	}

	var notes []string

	filtered, missing := s.aggregator.ApplySelections(variants, req.SelectSKUs, selections)
	if len(missing) > 0 {
		notes = append(notes, fmt.Sprintf("选择项在 Feed 中缺失，已生成占位行: %s", strings.Join(missing, ", ")))
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("过滤后没有任何数据行")
	}

	groups, err := s.aggregator.Aggregate(rs, filtered)
	if err != nil {
		return nil, err
	}

	// 颜色解析：仅在请求开启时使用 AI 建议
	var suggester ColorSuggester
	if req.UseAIColors {
		suggester = s.suggester
	}
	for _, g := range groups {
		codes := make([]string, 0, len(g.ColorGroups))
		rawNames := make([]string, 0, len(g.ColorGroups))
		for _, cg := range g.ColorGroups {
			codes = append(codes, cg.ColorCode)
			rawNames = append(rawNames, cg.RawColorName)
		}
		res := s.normalizer.ResolveStyleColors(ctx, rs, suggester, g.StyleCode, codes, rawNames)
		for i, cg := range g.ColorGroups {
			cg.ColorName = res.Names[i]
		}
		if res.Notes != "" {
			notes = append(notes, fmt.Sprintf("%s: %s", g.StyleCode, res.Notes))
		}
	}

	// 平台快照标题集合；快照不可用时降级为空集合继续
	existing := map[string]bool{}
	titles, err := s.snapshotRepo.AllTitles(ctx)
	if err != nil {
		log.Printf("[ListingService] 读取平台快照失败，按无快照去重: %v", err)
		notes = append(notes, "平台快照不可用，标题去重仅覆盖本批次")
	}
	for _, t := range titles {
		existing[t] = true
	}
	s.dedup.ResolveTitles(groups, existing)

	products, draftVariants := s.buildDraft(rs, groups)

	batch := &model.DraftBatch{
		BatchID:      uuid.New().String(),
		Status:       model.BatchStatusDraft,
		ImportID:     importID,
		ProductCount: len(products),
		VariantCount: len(draftVariants),
		Notes:        strings.Join(notes, "; "),
	}
	if err := s.draftRepo.CreateBatch(ctx, batch, products, draftVariants); err != nil {
		return nil, fmt.Errorf("保存草稿批次失败: %w", err)
	}

	log.Printf("[ListingService] 批次 %s: %d 款 %d 行", batch.BatchID, len(products), len(draftVariants))
	return &dto.PrepareDraftResult{
		BatchID:      batch.BatchID,
		ProductCount: len(products),
		VariantCount: len(draftVariants),
		Notes:        batch.Notes,
	}, nil
}

// buildDraft 把聚合结果装配为可落库的草稿行，并施加排序契约：
// 产品按款号排序；变体按 (款号, 颜色名, 尺码序) 排序。
func (s *ListingService) buildDraft(rs *rules.RuleSet, groups []*StyleGroup) ([]model.DraftProduct, []model.DraftVariant) {
	sorted := make([]*StyleGroup, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StyleCode < sorted[j].StyleCode })

	colorNameByKey := make(map[string]string)

	products := make([]model.DraftProduct, 0, len(sorted))
	var variants []model.DraftVariant

	for idx, g := range sorted {
		cls := s.classifier.Classify(rs, g.ExpandedTitle, g.ItemType, g.StyleCode, g.Season)

		breakdown, _ := json.Marshal(g.SizeBreakdown)
		products = append(products, model.DraftProduct{
			StyleCode:      g.StyleCode,
			Title:          g.FinalTitle,
			Handle:         buildHandle(s.brand, g.StyleCode),
			Vendor:         s.brand,
			ProductType:    cls.ProductType,
			Tags:           cls.Tags,
			BodyHTML:       fmt.Sprintf("Style: %s", g.StyleCode),
			Season:         g.Season,
			MSRP:           g.MaxMSRP,
			TotalInventory: g.TotalInventory,
			SizeBreakdown:  datatypes.JSON(breakdown),
			SortIndex:      idx,
			TitleNotes:     g.TitleNote,
		})

		for _, cg := range g.ColorGroups {
			colorNameByKey[g.StyleCode+"-"+cg.ColorCode] = cg.ColorName
		}

		for _, v := range g.Variants {
			colorName := colorNameByKey[v.StyleCode+"-"+v.ColorCode]
			size := s.normalizer.NormalizeSize(rs, v.RawSize, v.ItemType)

			var vNotes []string
			if v.Synthesized {
				vNotes = append(vNotes, "选择项缺失，占位行")
			}

			var price, cost *float64
			if v.MSRP != nil {
				p := *v.MSRP
				price = &p
				rate := 0.50
				if cls.IsFootwear {
					rate = 0.55
				}
				c := math.Round(p*rate*100) / 100
				cost = &c
			} else if !v.Synthesized {
				vNotes = append(vNotes, "缺少吊牌价")
			}

			variants = append(variants, model.DraftVariant{
				StyleCode:   v.StyleCode,
				ColorCode:   v.ColorCode,
				StyleColor:  v.StyleCode + "-" + v.ColorCode,
				SKU:         v.SKU,
				ColorName:   colorName,
				Size:        size,
				Price:       price,
				Cost:        cost,
				Quantity:    v.Quantity,
				Tags:        cls.Tags,
				RawSize:     v.RawSize,
				RawColor:    v.RawColorName,
				Synthesized: v.Synthesized,
				Notes:       strings.Join(vNotes, "; "),
			})
		}
	}

	sort.SliceStable(variants, func(i, j int) bool {
		a, b := variants[i], variants[j]
		if a.StyleCode != b.StyleCode {
			return a.StyleCode < b.StyleCode
		}
		if a.ColorName != b.ColorName {
			return a.ColorName < b.ColorName
		}
		return lessSize(a.Size, b.Size)
	})
	for i := range variants {
		variants[i].SortIndex = i
	}
	return products, variants
}

func buildHandle(brand, styleCode string) string {
	return strings.ToLower(brand) + "-" + strings.ToLower(styleCode)
}

// ==================== 尺码排序 ====================

var apparelSizeOrder = map[string]int{
	"2XS": 0, "XXS": 1, "XS": 2, "S": 3, "M": 4, "L": 5,
	"XL": 6, "2XL": 7, "3XL": 8, "4XL": 9, "5XL": 10,
}

// lessSize 数字尺码升序在前，其后按服装尺码序，未知尺码按字面排末尾
func lessSize(a, b string) bool {
	ga, na, oa := sizeSortKey(a)
	gb, nb, ob := sizeSortKey(b)
	if ga != gb {
		return ga < gb
	}
	switch ga {
	case 0:
		return na < nb
	case 1:
		return oa < ob
	default:
		return a < b
	}
}

func sizeSortKey(size string) (group int, num float64, ord int) {
	if n, err := strconv.ParseFloat(size, 64); err == nil {
		return 0, n, 0
	}
	if o, ok := apparelSizeOrder[strings.ToUpper(size)]; ok {
		return 1, 0, o
	}
	return 2, 0, 0
}
