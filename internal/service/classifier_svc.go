package service

import (
	"strings"

	"shopify_feed_v1_202608/internal/rules"
)

// ==================== 分类服务 ====================
// 从展开标题与供应商分类推导：性别段、鞋类标记、顶层分类、商品类型、有序标签。
// 标签顺序是下游展示契约的一部分，不能改动。

// 性别段取值
const (
	GenderMen     = "men"
	GenderWomen   = "women"
	GenderBoys    = "boys"
	GenderGirls   = "girls"
	GenderKids    = "kids"
	GenderUnknown = "unknown"
)

// NeedsCategoryTag 未能归类时的哨兵标签，供人工审核筛选
const NeedsCategoryTag = "Needs Category"

// Classification 一个款式的分类结果
type Classification struct {
	Gender      string
	IsFootwear  bool
	TopCategory string   // 性别 × 鞋类/服装 组合，如 "Women's Footwear"
	ProductType string   // 空串 = 未能归类
	Tags        []string // 有序：品牌, 款式编码, 分类标签..., 季节
}

// ClassifierService 分类服务
type ClassifierService struct {
	brand string
}

// NewClassifierService 创建分类服务
func NewClassifierService(brand string) *ClassifierService {
	return &ClassifierService{brand: brand}
}

// ==================== 性别与顶层分类 ====================

// DetectGender 从展开标题扫描性别段关键词
// 扫描顺序即优先级：girls/boys 在 women/men 之前（避免 "women" 含 "men" 的误判问题按原序处理）
func DetectGender(title string) string {
	t := strings.ToLower(title)
	for _, k := range []string{"girl's", "girls", "girl"} {
		if strings.Contains(t, k) {
			return GenderGirls
		}
	}
	for _, k := range []string{"boy's", "boys", "boy"} {
		if strings.Contains(t, k) {
			return GenderBoys
		}
	}
	for _, k := range []string{"women's", "women", "womens", "ladies", "w "} {
		if strings.Contains(t, k) {
			return GenderWomen
		}
	}
	for _, k := range []string{"men's", "men", "mens", "m "} {
		if strings.Contains(t, k) {
			return GenderMen
		}
	}
	for _, k := range []string{"junior", "youth", "kid", "kids", "child"} {
		if strings.Contains(t, k) {
			return GenderKids
		}
	}
	return GenderUnknown
}

// detectFootwear 标题/分类的鞋类关键词扫描
func detectFootwear(title, itemType string) bool {
	t := strings.ToLower(title)
	for _, k := range []string{"shoe", "sneaker", "footwear"} {
		if strings.Contains(t, k) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(itemType), "shoe")
}

// TopLevelTag 性别 × 鞋类 的顶层分类；无法判断的中性商品默认 Accessories
func TopLevelTag(title, itemType string) string {
	g := DetectGender(title)
	if detectFootwear(title, itemType) {
		switch g {
		case GenderWomen:
			return "Women's Footwear"
		case GenderMen:
			return "Men's Footwear"
		default:
			return "Kid's Footwear"
		}
	}
	switch g {
	case GenderWomen:
		return "Women's Apparel"
	case GenderMen:
		return "Men's Apparel"
	case GenderGirls:
		return "Girl's Apparel"
	case GenderBoys:
		return "Boy's Apparel"
	}
	return "Accessories" // 中性配件（帽袜等）默认
}

// ==================== 商品类型 ====================

// 次级启发式规则（主关键词表未命中时的兜底，顺序即优先级）
var fallbackTypeRules = []struct {
	keywords []string
	ptype    string
}{
	{[]string{"shoe", "sneaker", "footwear"}, "Shoes"},
	{[]string{"cap", "hat", "visor", "beanie", "bucket"}, "Headwear"},
	{[]string{"sock", "socks"}, "Socks"},
	{[]string{"jacket", "hoodie", "full zip", "half zip", "fz", "hz"}, "Jacket & Hoodies"},
	{[]string{"legging", "tight"}, "Leggings"},
	{[]string{"dress"}, "Women's Dresses"},
	{[]string{"skirt", "skort"}, "Shorts & Skirts"},
	{[]string{"short ", " shorts", "shorts"}, "Shorts"},
	{[]string{"pant", "pants", "trouser", "jogger"}, "Pant"},
	{[]string{"tee", "t-shirt", "top", "polo", "tank"}, "T-Shirt & Tops"},
	{[]string{"bag", "wristband", "headband", "sleeve", "accessory", "accessories"}, "Accessories"},
}

// ResolveProductType 解析商品类型：
// 规则表（按优先级）> 启发式兜底 > 供应商分类原文 > 空串（未归类）
func (s *ClassifierService) ResolveProductType(rs *rules.RuleSet, expandedTitle, itemType string) string {
	if pt := rs.ProductTypeFor(expandedTitle); pt != "" {
		return pt
	}
	t := strings.ToLower(expandedTitle)
	for _, r := range fallbackTypeRules {
		for _, k := range r.keywords {
			if strings.Contains(t, k) {
				return r.ptype
			}
		}
	}
	return strings.TrimSpace(itemType)
}

// categoryFromTitle 标题分类标签；女款 Shorts 特判为 Shorts & Skirts
func categoryFromTitle(rs *rules.RuleSet, title, gender string) string {
	cat := rs.CategoryFor(title)
	if cat == "Shorts" && gender == GenderWomen {
		return "Shorts & Skirts"
	}
	return cat
}

// ==================== 标签组装 ====================

// Classify 完整分类：性别、鞋类、顶层分类、商品类型、有序标签
func (s *ClassifierService) Classify(rs *rules.RuleSet, expandedTitle, itemType, styleCode, season string) Classification {
	gender := DetectGender(expandedTitle)
	footwear := detectFootwear(expandedTitle, itemType)
	top := TopLevelTag(expandedTitle, itemType)
	cat := categoryFromTitle(rs, expandedTitle, gender)

	tags := []string{s.brand, strings.ToUpper(styleCode)}
	if strings.Contains(top, "Footwear") {
		// 鞋类只打顶层标签
		tags = append(tags, top)
	} else {
		if cat != "" {
			tags = append(tags, cat)
		} else {
			tags = append(tags, NeedsCategoryTag)
		}
		tags = append(tags, top)
		// 中性品类（帽/袜）补打 Accessories
		if (cat == "Headwear" || cat == "Socks") && top != "Accessories" {
			tags = append(tags, "Accessories")
		}
	}
	if se := strings.TrimSpace(season); se != "" {
		tags = append(tags, se)
	}

	return Classification{
		Gender:      gender,
		IsFootwear:  footwear,
		TopCategory: top,
		ProductType: s.ResolveProductType(rs, expandedTitle, itemType),
		Tags:        tags,
	}
}
