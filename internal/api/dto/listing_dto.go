package dto

// ==================== 草稿生成 ====================

// PrepareDraftRequest 生成草稿批次请求
type PrepareDraftRequest struct {
	// Feed 导入批次；为空取最近一次导入
	ImportID string `json:"import_id"`

	// 选择过滤（三者至少提供一种，可叠加）
	SelectSKUs  []string `json:"select_skus"`
	SelectCodes []string `json:"select_codes"` // 形如 "BV0217-382"

	// 未映射颜色是否请求 AI 命名建议
	UseAIColors bool `json:"use_ai_colors"`
}

// PrepareDraftResult 生成结果
type PrepareDraftResult struct {
	BatchID      string `json:"batch_id"`
	ProductCount int    `json:"product_count"`
	VariantCount int    `json:"variant_count"`
	Notes        string `json:"notes,omitempty"`
}

// ==================== 批次查询 ====================

// BatchListQuery 批次列表查询参数
type BatchListQuery struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=20"`
}
