package dto

// ==================== 批次上传 ====================

// UploadBatchRequest 草稿批次上传请求
type UploadBatchRequest struct {
	// 上架状态: draft(默认) 或 active
	PublishStatus string `json:"publish_status"`

	// 是否写入库存与成本，默认均写入
	SkipInventory bool `json:"skip_inventory"`
	SkipCost      bool `json:"skip_cost"`
}

// UploadRecord 单个款式的上传结果
type UploadRecord struct {
	StyleCode     string `json:"style_code"`
	Status        string `json:"status"` // created / updated / error
	ProductID     int64  `json:"product_id,omitempty"`
	Handle        string `json:"handle,omitempty"`
	VariantCount  int    `json:"variant_count,omitempty"`
	AddedVariants int    `json:"added_variants,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// UploadBatchResult 批次上传汇总
type UploadBatchResult struct {
	BatchID string         `json:"batch_id"`
	Status  string         `json:"status"`
	Created int            `json:"created"`
	Updated int            `json:"updated"`
	Errors  int            `json:"errors"`
	Records []UploadRecord `json:"records"`
}
