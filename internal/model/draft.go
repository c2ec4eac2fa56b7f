package model

import (
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// ==================== 状态常量 ====================

const (
	// 草稿批次状态
	BatchStatusDraft    = "draft"    // 待人工审核
	BatchStatusUploaded = "uploaded" // 已上传到平台
	BatchStatusFailed   = "failed"

	// 上传结果状态
	UploadStatusCreated = "created"
	UploadStatusUpdated = "updated"
	UploadStatusSkipped = "skipped"
	UploadStatusError   = "error"
)

// ==================== 草稿模型 ====================
// 每次运行从当前 Feed + 当前平台快照全新生成，跨运行不保留身份。

// DraftBatch 一次草稿生成的批次
type DraftBatch struct {
	BaseModel

	BatchID string `gorm:"size:36;uniqueIndex" json:"batch_id"`
	Status  string `gorm:"size:20;index;default:draft" json:"status"`

	// 生成参数与统计
	ImportID     string `gorm:"size:36;index;comment:来源Feed导入批次" json:"import_id"`
	ProductCount int    `gorm:"default:0" json:"product_count"`
	VariantCount int    `gorm:"default:0" json:"variant_count"`
	Notes        string `gorm:"type:text;comment:运行期警告(快照降级/AI失败等)" json:"notes"`

	// 上传报告（按行记录 created/skipped/error）
	UploadReport datatypes.JSON `gorm:"type:jsonb" json:"upload_report"`

	Products []DraftProduct `gorm:"foreignKey:BatchRef;references:ID" json:"products,omitempty"`
	Variants []DraftVariant `gorm:"foreignKey:BatchRef;references:ID" json:"variants,omitempty"`
}

func (DraftBatch) TableName() string {
	return "draft_batches"
}

// DraftProduct 商品草稿（每个 style_code 恰好一条）
type DraftProduct struct {
	BaseModel

	BatchRef int64  `gorm:"index;not null" json:"batch_ref"`
	BatchID  string `gorm:"size:36;index" json:"batch_id"`

	StyleCode string `gorm:"size:20;index" json:"style_code"`

	// --- 规范化结果 ---
	Title       string         `gorm:"size:255;comment:去重后的最终标题" json:"title"`
	Handle      string         `gorm:"size:255" json:"handle"`
	Vendor      string         `gorm:"size:100" json:"vendor"`
	ProductType string         `gorm:"size:100;comment:可空=未能归类" json:"product_type"`
	Tags        pq.StringArray `gorm:"type:text[];comment:有序标签" json:"tags"`
	BodyHTML    string         `gorm:"size:255" json:"body_html"`

	// --- 代表字段与聚合 ---
	Season         string   `gorm:"size:50" json:"season"`
	MSRP           *float64 `gorm:"type:decimal(10,2);comment:款式内最大MSRP" json:"msrp"`
	TotalInventory int      `gorm:"default:0" json:"total_inventory"`

	// 尺码->数量 透视（供审核时查看分布）
	SizeBreakdown datatypes.JSON `gorm:"type:jsonb" json:"size_breakdown"`

	// --- 可追溯性 ---
	SortIndex  int    `gorm:"default:0;comment:导出顺序" json:"sort_index"`
	TitleNotes string `gorm:"size:255;comment:标题处理备注(冲突加后缀等)" json:"title_notes"`
}

func (DraftProduct) TableName() string {
	return "draft_products"
}

// DraftVariant 变体草稿（每个存活 SKU 一条）
type DraftVariant struct {
	BaseModel

	BatchRef int64  `gorm:"index;not null" json:"batch_ref"`
	BatchID  string `gorm:"size:36;index" json:"batch_id"`

	// --- 回溯标识 ---
	StyleCode  string `gorm:"size:20;index" json:"style_code"`
	ColorCode  string `gorm:"size:10" json:"color_code"`
	StyleColor string `gorm:"size:30;index;comment:style-color 组合键" json:"style_color"`
	SKU        string `gorm:"size:100" json:"sku"`

	// --- 规范化结果 ---
	ColorName string `gorm:"size:100;comment:款式内唯一" json:"color_name"`
	Size      string `gorm:"size:50;comment:规范尺码" json:"size"`

	// --- 价格与库存 ---
	Price    *float64 `gorm:"type:decimal(10,2);comment:=MSRP" json:"price"`
	Cost     *float64 `gorm:"type:decimal(10,2);comment:按品类比例折算" json:"cost"`
	Quantity int      `gorm:"default:0" json:"quantity"`

	Tags pq.StringArray `gorm:"type:text[]" json:"tags"`

	// --- 可追溯性 ---
	RawSize     string `gorm:"size:50" json:"raw_size"`
	RawColor    string `gorm:"size:100" json:"raw_color"`
	Synthesized bool   `gorm:"default:false;comment:Feed缺失、由选择合成" json:"synthesized"`
	SortIndex   int    `gorm:"default:0" json:"sort_index"`
	Notes       string `gorm:"size:255;comment:Missing MSRP 等" json:"notes"`
}

func (DraftVariant) TableName() string {
	return "draft_variants"
}
