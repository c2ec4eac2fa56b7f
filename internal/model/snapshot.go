package model

// ==================== 平台快照 ====================
// 平台（Shopify）现有商品的本地镜像，由定时任务刷新。
// 只作为标题冲突检测与"已上架"判断的外部事实来源，本系统不修改平台数据。

// PlatformProduct 平台商品快照
type PlatformProduct struct {
	BaseModel

	ProductID int64  `gorm:"uniqueIndex;not null;comment:平台侧商品ID" json:"product_id"`
	Handle    string `gorm:"size:255;index" json:"handle"`
	Title     string `gorm:"size:255;index" json:"title"`
	Vendor    string `gorm:"size:100" json:"vendor"`
	Tags      string `gorm:"type:text;comment:平台返回的逗号分隔标签原文" json:"tags"`
}

func (PlatformProduct) TableName() string {
	return "platform_products"
}

// PlatformVariant 平台变体快照
type PlatformVariant struct {
	BaseModel

	ProductID    int64  `gorm:"index;not null" json:"product_id"`
	VariantID    int64  `gorm:"uniqueIndex;not null" json:"variant_id"`
	SKU          string `gorm:"size:100;index" json:"sku"`
	Barcode      string `gorm:"size:100" json:"barcode"`
	VariantTitle string `gorm:"size:255" json:"variant_title"`
	Option1Name  string `gorm:"size:50" json:"option1_name"`
	Option1Value string `gorm:"size:100" json:"option1_value"`
	Option2Name  string `gorm:"size:50" json:"option2_name"`
	Option2Value string `gorm:"size:100" json:"option2_value"`
}

func (PlatformVariant) TableName() string {
	return "platform_variants"
}
