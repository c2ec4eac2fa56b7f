package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"shopify_feed_v1_202608/internal/model"
	"shopify_feed_v1_202608/internal/repository"
)

// ==================== 选款候选服务 ====================
// 以款色为粒度对 Feed 打分，并对照平台快照标记已上架 / 潜在新颜色，
// 供人工选款参考。只读不落库。

// 库存得分在该值处封顶
const candidateStockCap = 30

// 高尔夫鞋不参与选款
const excludedItemType = "NIKE - Golf : Shoes"

// CandidateRow 一个款色的候选行
type CandidateRow struct {
	StyleCode      string         `json:"style_code"`
	ColorCode      string         `json:"color_code"`
	Vendor         string         `json:"vendor"`
	ItemType       string         `json:"item_type"`
	Season         string         `json:"season"`
	RawTitle       string         `json:"raw_title"`
	RawColorName   string         `json:"raw_color_name"`
	TotalInventory int            `json:"total_inventory"`
	MSRP           *float64       `json:"msrp"`
	SizeBreakdown  map[string]int `json:"size_breakdown"`

	// 打分结果
	ScoreStock       float64 `json:"score_stock"`
	ScoreTotal       float64 `json:"score_total"`
	SizeDistScore    float64 `json:"size_dist_score"`
	SizeDistribution string  `json:"size_distribution"` // Balanced / Mixed / Skewed

	// 对照快照
	SKUCount  int      `json:"sku_count"`
	SampleSKU string   `json:"sample_sku"`
	SKUs      []string `json:"skus"`
	NewColor  bool     `json:"new_color"` // 款式已上架但该颜色未上架
}

// CandidateReport 候选报告：新候选按总分降序，已上架按库存升序
type CandidateReport struct {
	ImportID string         `json:"import_id"`
	New      []CandidateRow `json:"new"`
	Already  []CandidateRow `json:"already"`
}

// CandidateService 选款候选服务
type CandidateService struct {
	feedRepo     repository.FeedRepository
	snapshotRepo repository.SnapshotRepository
}

func NewCandidateService(feedRepo repository.FeedRepository, snapshotRepo repository.SnapshotRepository) *CandidateService {
	return &CandidateService{feedRepo: feedRepo, snapshotRepo: snapshotRepo}
}

// BuildReport 基于指定导入批次（为空取最近一次）生成候选报告
func (s *CandidateService) BuildReport(ctx context.Context, importID string) (*CandidateReport, error) {
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

	rows := s.groupAndScore(variants)

	shopSKUs, err := s.snapshotRepo.AllSKUs(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取快照 SKU 失败: %w", err)
	}
	searchText, err := s.snapshotRepo.SearchText(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取快照索引失败: %w", err)
	}

	report := &CandidateReport{ImportID: importID}
	for _, row := range rows {
		listed := false
		for _, sku := range row.SKUs {
			if shopSKUs[strings.ToLower(strings.TrimSpace(sku))] {
				listed = true
				break
			}
		}
		if listed {
			report.Already = append(report.Already, row)
			continue
		}
		row.NewColor = styleExistsInText(searchText, row.StyleCode)
		report.New = append(report.New, row)
	}

	sort.SliceStable(report.New, func(i, j int) bool {
		return report.New[i].ScoreTotal > report.New[j].ScoreTotal
	})
	sort.SliceStable(report.Already, func(i, j int) bool {
		a, b := report.Already[i], report.Already[j]
		if a.TotalInventory != b.TotalInventory {
			return a.TotalInventory < b.TotalInventory
		}
		if a.StyleCode != b.StyleCode {
			return a.StyleCode < b.StyleCode
		}
		return a.ColorCode < b.ColorCode
	})
	return report, nil
}

// groupAndScore 按款色聚合并打分。排除高尔夫鞋与零库存款色。
func (s *CandidateService) groupAndScore(variants []model.FeedVariant) []CandidateRow {
	order := make([]string, 0)
	byKey := make(map[string]*CandidateRow)

	for _, v := range variants {
		if v.ItemType == excludedItemType {
			continue
		}
		key := v.StyleCode + "-" + v.ColorCode
		row, ok := byKey[key]
		if !ok {
			row = &CandidateRow{
				StyleCode:     v.StyleCode,
				ColorCode:     v.ColorCode,
				Vendor:        v.Vendor,
				ItemType:      v.ItemType,
				Season:        v.Season,
				RawTitle:      v.RawTitle,
				RawColorName:  v.RawColorName,
				SizeBreakdown: make(map[string]int),
			}
			byKey[key] = row
			order = append(order, key)
		}
		row.TotalInventory += v.Quantity
		if v.RawSize != "" {
			row.SizeBreakdown[v.RawSize] += v.Quantity
		}
		if v.MSRP != nil && (row.MSRP == nil || *v.MSRP > *row.MSRP) {
			msrp := *v.MSRP
			row.MSRP = &msrp
		}
		if v.SKU != "" {
			row.SKUs = append(row.SKUs, v.SKU)
		}
	}

	rows := make([]CandidateRow, 0, len(order))
	for _, key := range order {
		row := byKey[key]
		if row.TotalInventory <= 0 {
			continue
		}
		// 同一 SKU 可能拆成多行出货：去重排序后再计数
		row.SKUs = uniqueSorted(row.SKUs)
		row.SKUCount = len(row.SKUs)
		if len(row.SKUs) > 0 {
			row.SampleSKU = row.SKUs[0]
		}
		scoreRow(row)
		rows = append(rows, *row)
	}
	return rows
}

// scoreRow 库存得分封顶线性归一；尺码分布分 = (1 - 最大尺码占比) * 100
func scoreRow(row *CandidateRow) {
	stock := row.TotalInventory
	if stock > candidateStockCap {
		stock = candidateStockCap
	}
	row.ScoreStock = float64(stock) / candidateStockCap * 100
	row.ScoreTotal = row.ScoreStock

	total, top := 0, 0
	for _, qty := range row.SizeBreakdown {
		if qty <= 0 {
			continue
		}
		total += qty
		if qty > top {
			top = qty
		}
	}
	if total > 0 {
		score := (1.0 - float64(top)/float64(total)) * 100.0
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}
		row.SizeDistScore = score
	}
	switch {
	case row.SizeDistScore >= 50:
		row.SizeDistribution = "Balanced"
	case row.SizeDistScore >= 25:
		row.SizeDistribution = "Mixed"
	default:
		row.SizeDistribution = "Skewed"
	}
}

func uniqueSorted(in []string) []string {
	sort.Strings(in)
	out := in[:0]
	for _, s := range in {
		if len(out) == 0 || s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}

func styleExistsInText(texts []string, styleCode string) bool {
	needle := strings.ToLower(strings.TrimSpace(styleCode))
	if needle == "" {
		return false
	}
	for _, t := range texts {
		if strings.Contains(t, needle) {
			return true
		}
	}
	return false
}
