package rules

import (
	"sort"
	"strings"
)

// ==================== 规则集 ====================
// RuleSet 每次运行构建一次（内置默认 + CSV 覆盖合并），之后只读，
// 以参数形式注入各服务，不使用包级可变状态。

// RuleSet 规范化引擎使用的全部规则表
type RuleSet struct {
	// 标题缩写展开：首词表（位置敏感）与通用表
	StartAbbr map[string]string
	AnyAbbr   map[string]string

	// 服装尺码规范映射（长写/符号 -> 规范 token）
	SizeMap map[string]string

	// 色号 -> 颜色名
	ColorCodes map[string]string

	// 商品类型关键词规则（按 -priority, keyword 排序，首个命中生效）
	ProductTypes []ProductTypeRule

	// 标题 -> 分类标签关键词规则（有序，首个命中生效）
	Categories []CategoryRule
}

// ProductTypeRule 商品类型关键词规则
type ProductTypeRule struct {
	Keyword     string
	ProductType string
	Priority    int
}

// CategoryRule 分类标签关键词规则
type CategoryRule struct {
	Keyword  string
	Category string
}

// ==================== 内置默认表 ====================

// 首词缩写（性别/年龄段标记，仅在第一个 token 位置生效）
var defaultStartAbbr = map[string]string{
	"G":  "Girls",
	"B":  "Boys",
	"NK": "Nike",
	"U":  "Unisex",
	"W":  "Women's",
	"M":  "Men's",
	"AB": "Youth",
	"AD": "Kids",
	"AO": "Naomi Osaka",
}

// 通用缩写（任意位置生效）
var defaultAnyAbbr = map[string]string{
	"DF":      "Dri-FIT",
	"DFADV":   "Dri-FIT Advantage",
	"ADV":     "ADV",
	"SS":      "Short Sleeve",
	"LS":      "Long Sleeve",
	"SL":      "Sleeveless",
	"PRT":     "Print",
	"VCTRY":   "Victory",
	"NVLTY":   "Novelty",
	"NXT":     "Next",
	"HERITGE": "Heritage",
	"ADVTG":   "Advantage",
	"PQ":      "PQ",
	"PLTD":    "Pleated",
	"FLNCY":   "Flouncy",
	"PCKBL":   "Pickleball",
	"NP":      "Nike Pro",
	"TGT":     "Tight",
	"HTHR":    "Heather",
	"AB":      "Aerobill",
	"ESSNTL":  "Essential",
	"SWSH":    "Swoosh",
	"INDY":    "Indy",
	"ARBL":    "Aerobill",
	"ELSTKA":  "Elastika",
	"CRP":     "Crop",
	"MULTI":   "Multi",
	"WVN":     "Woven",
	"S":       "Swoosh",
	"FUT":     "Futura",
	"SNBK":    "Snapback",
	"TGHT":    "Tight",
	"RND":     "Round",
	"FLY":     "Fly",
	"RFLTV":   "Reflective",
	"WSH":     "Wash",
	"RVR SBL": "Reversible",
	"STRTCH":  "Stretch",
	"DBLE":    "Double",
	"RTRO":    "Retro",
	"STRP":    "Stripe",
	"CB":      "Club",
	"HZ":      "Half Zip",
	"FZ":      "Full Zip",
	"TSHRT":   "T-Shirt",
	"SHRT":    "Short",
	"DRSS":    "Dress",
	"PRFMNC":  "Performance",
	"REG":     "Regular",
	"TNS":     "Tennis Skirt",
	"HC":      "Hard Court",
	"THRMFLX": "Therma Flex",
	"USO":     "US Open",
	"LTWT":    "Lightweight",
	"BKT":     "Bucket",
	"PRM":     "Premium",
}

// 服装尺码规范映射，目标 token 集 {2XS,XS,S,M,L,XL,2XL,3XL,4XL}
var defaultSizeMap = map[string]string{
	"XX SMALL":    "2XS",
	"XXS":         "2XS",
	"2XS":         "2XS",
	"X SMALL":     "XS",
	"EXTRA SMALL": "XS",
	"SMALL":       "S",
	"MEDIUM":      "M",
	"LARGE":       "L",
	"X LARGE":     "XL",
	"EXTRA LARGE": "XL",
	"XX LARGE":    "2XL",
	"XXX LARGE":   "3XL",
	"XXL":         "2XL",
	"XXXL":        "3XL",
	"XXXXL":       "4XL",
	"2X":          "2XL",
	"3X":          "3XL",
	"4X":          "4XL",
}

// 色号 -> 颜色名
var defaultColorCodes = map[string]string{
	"451": "Navy Blue",
	"010": "Black",
	"580": "Light Purple",
	"464": "Light Blue",
	"629": "Hot Pink",
	"361": "Green",
	"100": "White",
	"657": "Red",
	"379": "Teal",
	"402": "Blue",
	"489": "Blue",
	"110": "Ivory",
	"507": "Purple",
}

// 商品类型关键词规则（priority 高者优先，同级按关键词字典序）
var defaultProductTypes = []ProductTypeRule{
	{"polo", "T-Shirt & Tops", 10},
	{"sleeveless", "T-Shirt & Tops", 9},
	{"long sleeve", "T-Shirt & Tops", 9},
	{"jacket", "Jacket & Hoodies", 10},
	{"hoodie", "Jacket & Hoodies", 10},
	{"sock", "Socks", 10},
	{"pant", "Pant", 10},
	{"shorts", "Shorts", 10},
	{"dress", "Women's Dresses", 10},
	{"tight", "Leggings", 10},
	{"skirt", "Shorts & Skirts", 10},
	{"skort", "Shorts & Skirts", 10},
	{"cap", "Headwear", 10},
	{"beanie", "Headwear", 10},
}

// 标题分类标签规则（顺序即优先级）
var defaultCategories = []CategoryRule{
	{"hoodie", "Jacket & Hoodies"},
	{"jacket", "Jacket & Hoodies"},
	{"fleece", "T-Shirt & Tops"},
	{"sweatshirt", "T-Shirt & Tops"},
	{"tank top", "T-Shirt & Tops"},
	{"tank", "T-Shirt & Tops"},
	{"tee", "T-Shirt & Tops"},
	{"top", "T-Shirt & Tops"},
	{"shirt", "T-Shirt & Tops"},
	{"t-shirt", "T-Shirt & Tops"},
	{"polo", "T-Shirt & Tops"},
	{"bra", "T-Shirt & Tops"},
	{"pant", "Pant"},
	{"pants", "Pant"},
	{"jogger", "Pant"},
	{"shorts", "Shorts"},
	{"skirt", "Skirts"},
	{"leggings", "Leggings"},
	{"dress", "Dress"},
	{"cap", "Headwear"},
	{"hat", "Headwear"},
	{"beanie", "Headwear"},
	{"sock", "Socks"},
	{"shoe", "Shoes"},
}

// ==================== 构建 ====================

// Defaults 返回只含内置默认表的规则集
func Defaults() *RuleSet {
	rs := &RuleSet{
		StartAbbr:  make(map[string]string, len(defaultStartAbbr)),
		AnyAbbr:    make(map[string]string, len(defaultAnyAbbr)),
		SizeMap:    make(map[string]string, len(defaultSizeMap)),
		ColorCodes: make(map[string]string, len(defaultColorCodes)),
	}
	for k, v := range defaultStartAbbr {
		rs.StartAbbr[k] = v
	}
	for k, v := range defaultAnyAbbr {
		rs.AnyAbbr[k] = v
	}
	for k, v := range defaultSizeMap {
		rs.SizeMap[k] = v
	}
	for k, v := range defaultColorCodes {
		rs.ColorCodes[k] = v
	}
	rs.ProductTypes = append(rs.ProductTypes, defaultProductTypes...)
	rs.Categories = append(rs.Categories, defaultCategories...)
	rs.sortProductTypes()
	return rs
}

// sortProductTypes 按 (-priority, keyword) 排序，保证扫描顺序确定
func (rs *RuleSet) sortProductTypes() {
	sort.SliceStable(rs.ProductTypes, func(i, j int) bool {
		if rs.ProductTypes[i].Priority != rs.ProductTypes[j].Priority {
			return rs.ProductTypes[i].Priority > rs.ProductTypes[j].Priority
		}
		return rs.ProductTypes[i].Keyword < rs.ProductTypes[j].Keyword
	})
}

// ==================== 查询 ====================

// ColorByCode 色号查颜色名，未命中返回空串
func (rs *RuleSet) ColorByCode(code string) string {
	return rs.ColorCodes[strings.TrimSpace(code)]
}

// ProductTypeFor 在展开标题中扫描类型关键词，首个命中生效；未命中返回空串
func (rs *RuleSet) ProductTypeFor(expandedTitle string) string {
	t := strings.ToLower(expandedTitle)
	for _, r := range rs.ProductTypes {
		if strings.Contains(t, r.Keyword) {
			return r.ProductType
		}
	}
	return ""
}

// CategoryFor 在标题中扫描分类关键词，首个命中生效；未命中返回空串
func (rs *RuleSet) CategoryFor(title string) string {
	t := strings.ToLower(title)
	for _, r := range rs.Categories {
		if strings.Contains(t, r.Keyword) {
			return r.Category
		}
	}
	return ""
}
