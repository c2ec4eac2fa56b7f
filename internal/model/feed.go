package model

// ==================== 供应商数据源 ====================

// FeedVariant 供应商 Feed 的变体行（一行 = 一个 SKU 实例）
// style_code + color_code 共同标识一个款式-颜色组，style_code 单独标识一个商品
type FeedVariant struct {
	BaseModel

	// 导入批次（一次 Feed 导入 = 一个批次）
	ImportID string `gorm:"size:36;index;comment:导入批次ID" json:"import_id"`

	// --- 核心标识 ---
	StyleCode string `gorm:"size:20;index:idx_feed_style_color;comment:款式编码" json:"style_code"`
	ColorCode string `gorm:"size:10;index:idx_feed_style_color;comment:色号(3位补零)" json:"color_code"`
	SKU       string `gorm:"size:100;index" json:"sku"`

	// --- 供应商原始字段 ---
	Vendor       string `gorm:"size:100" json:"vendor"`
	ItemType     string `gorm:"size:100;comment:供应商分类原文" json:"item_type"`
	Season       string `gorm:"size:50;comment:如 Summer 2026" json:"season"`
	RawSize      string `gorm:"size:50;comment:原始尺码" json:"raw_size"`
	RawColorName string `gorm:"size:100;comment:原始颜色名" json:"raw_color_name"`
	RawTitle     string `gorm:"size:255;comment:缩写标题原文" json:"raw_title"`

	// --- 数值字段（导入时已清洗：缺失数量按 0 处理，MSRP 可空） ---
	Quantity int      `gorm:"default:0" json:"quantity"`
	MSRP     *float64 `gorm:"type:decimal(10,2)" json:"msrp"`

	// 运行期标记：显式选择在 Feed 中缺失、由引擎合成的占位行（不落库）
	Synthesized bool `gorm:"-" json:"-"`
}

func (FeedVariant) TableName() string {
	return "feed_variants"
}

// FeedImport Feed 导入批次记录
type FeedImport struct {
	BaseModel

	ImportID   string `gorm:"size:36;uniqueIndex" json:"import_id"`
	SourceFile string `gorm:"size:255" json:"source_file"`
	RowCount   int    `gorm:"default:0;comment:有效变体行数" json:"row_count"`
	SkipCount  int    `gorm:"default:0;comment:跳过行数(非目标供应商/缺标识)" json:"skip_count"`
}

func (FeedImport) TableName() string {
	return "feed_imports"
}
