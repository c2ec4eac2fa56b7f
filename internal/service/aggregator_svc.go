package service

import (
	"fmt"
	"regexp"
	"strings"

	"shopify_feed_v1_202608/internal/model"
	"shopify_feed_v1_202608/internal/rules"
)

// ==================== 款式聚合服务 ====================
// 把变体行折叠成每个 style_code 一条商品记录：
// 选取代表性款色组（稳定输入顺序中首个出现者）提供基准标题与季节，
// 并为调用方显式选择但 Feed 中缺失的款色组合成零库存占位行。

// Selection 显式选择的款色组合（已 normalize：款式大写、色号补零）
type Selection struct {
	StyleCode string
	ColorCode string
}

// Key 组合键 "STYLE-COLOR"
func (s Selection) Key() string {
	return s.StyleCode + "-" + s.ColorCode
}

// ColorGroup 一个款色组（同 style+color 的全部变体行）
type ColorGroup struct {
	ColorCode    string
	RawColorName string // 组内首行的原始颜色名
	ColorName    string // 归一后的唯一颜色名（由颜色解析回填）
}

// StyleGroup 一个款式的聚合结果
type StyleGroup struct {
	StyleCode string

	// 代表字段（取首个款色组首行）
	RawTitle string
	Season   string
	ItemType string
	Vendor   string

	// 标题流水线产物
	ExpandedTitle string
	BaseTitle     string
	FinalTitle    string // 去重后回填
	TitleNote     string

	// 聚合值
	MaxMSRP        *float64
	TotalInventory int
	SizeBreakdown  map[string]int // 原始尺码 -> 数量

	ColorGroups []*ColorGroup
	Variants    []model.FeedVariant // 稳定输入顺序
}

// AggregatorService 款式聚合服务
type AggregatorService struct {
	brand    string
	expander *ExpanderService
}

// NewAggregatorService 创建款式聚合服务
func NewAggregatorService(brand string, expander *ExpanderService) *AggregatorService {
	return &AggregatorService{brand: brand, expander: expander}
}

// ==================== 选择过滤与占位合成 ====================

// ApplySelections 按 SKU/款色选择过滤变体行；显式选择但 Feed 缺失的款色
// 合成零库存占位行（只带标识字段），保证每个显式选择都出现在输出中。
// 返回（过滤后的行, 合成的款色键列表）。
func (s *AggregatorService) ApplySelections(variants []model.FeedVariant, skus []string, selections []Selection) ([]model.FeedVariant, []string) {
	skuSet := make(map[string]bool, len(skus))
	for _, sku := range skus {
		if v := strings.ToLower(strings.TrimSpace(sku)); v != "" {
			skuSet[v] = true
		}
	}
	selSet := make(map[string]Selection, len(selections))
	for _, sel := range selections {
		selSet[strings.ToLower(sel.Key())] = sel
	}

	out := make([]model.FeedVariant, 0, len(variants))
	present := make(map[string]bool, len(selSet))
	for _, v := range variants {
		if len(skuSet) > 0 && !skuSet[strings.ToLower(strings.TrimSpace(v.SKU))] {
			continue
		}
		if len(selSet) > 0 {
			key := strings.ToLower(v.StyleCode + "-" + v.ColorCode)
			if _, ok := selSet[key]; !ok {
				continue
			}
			present[key] = true
		}
		out = append(out, v)
	}

	// 合成缺失的显式选择（保持选择的原始顺序，确定性输出）
	var missing []string
	for _, sel := range selections {
		key := strings.ToLower(sel.Key())
		if present[key] {
			continue
		}
		out = append(out, model.FeedVariant{
			StyleCode:   sel.StyleCode,
			ColorCode:   sel.ColorCode,
			RawTitle:    sel.StyleCode, // 无标题可用，款式编码占位
			Quantity:    0,
			Synthesized: true,
		})
		missing = append(missing, sel.Key())
	}
	return out, missing
}

// ==================== 聚合 ====================

// Aggregate 按 style_code 聚合（保持首次出现顺序），并构建基准标题。
// 每个款式必须有代表行，否则属于引擎不变量被破坏。
func (s *AggregatorService) Aggregate(rs *rules.RuleSet, variants []model.FeedVariant) ([]*StyleGroup, error) {
	byStyle := make(map[string]*StyleGroup)
	var order []string

	for _, v := range variants {
		sc := strings.ToUpper(strings.TrimSpace(v.StyleCode))
		if sc == "" {
			continue
		}
		g, ok := byStyle[sc]
		if !ok {
			g = &StyleGroup{
				StyleCode:     sc,
				RawTitle:      v.RawTitle,
				Season:        strings.TrimSpace(v.Season),
				ItemType:      v.ItemType,
				Vendor:        v.Vendor,
				SizeBreakdown: make(map[string]int),
			}
			byStyle[sc] = g
			order = append(order, sc)
		}

		// 款色组按首次出现顺序登记
		found := false
		for _, cg := range g.ColorGroups {
			if cg.ColorCode == v.ColorCode {
				found = true
				break
			}
		}
		if !found {
			g.ColorGroups = append(g.ColorGroups, &ColorGroup{
				ColorCode:    v.ColorCode,
				RawColorName: strings.TrimSpace(v.RawColorName),
			})
		}

		g.TotalInventory += v.Quantity
		if v.RawSize != "" {
			g.SizeBreakdown[v.RawSize] += v.Quantity
		}
		if v.MSRP != nil && (g.MaxMSRP == nil || *v.MSRP > *g.MaxMSRP) {
			msrp := *v.MSRP
			g.MaxMSRP = &msrp
		}
		g.Variants = append(g.Variants, v)
	}

	groups := make([]*StyleGroup, 0, len(order))
	for _, sc := range order {
		g := byStyle[sc]
		if len(g.Variants) == 0 {
			return nil, fmt.Errorf("款式 %s 没有代表行，引擎状态不一致", sc)
		}
		g.ExpandedTitle = s.expander.Expand(rs, g.RawTitle)
		g.BaseTitle = s.buildBaseTitle(g.ExpandedTitle)
		groups = append(groups, g)
	}
	return groups, nil
}

// ==================== 基准标题 ====================

var (
	trailingLnRe  = regexp.MustCompile(`(?i)[\s\-]*ln$`)
	brandAbbrRe   = regexp.MustCompile(`(?i)\bNk\b`)
	doubleBrandRe = regexp.MustCompile(`(?i)Nike\s+Nike`)
	multiSpaceRe  = regexp.MustCompile(`\s{2,}`)
)

// buildBaseTitle 品牌前缀 + 展开标题，去掉尾部噪声 "Ln"，
// 展开引入重复品牌词时折叠（"Nike Nk ..." / "Nike Nike ..."）
func (s *AggregatorService) buildBaseTitle(expandedTitle string) string {
	t := strings.TrimSpace(s.brand + " " + expandedTitle)
	t = strings.TrimSpace(trailingLnRe.ReplaceAllString(t, ""))
	if strings.Contains(t, s.brand) {
		t = brandAbbrRe.ReplaceAllString(t, "")
		t = doubleBrandRe.ReplaceAllString(t, s.brand)
		t = strings.TrimSpace(multiSpaceRe.ReplaceAllString(t, " "))
	}
	return t
}
