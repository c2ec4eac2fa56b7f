package controller

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"shopify_feed_v1_202608/internal/api/dto"
	"shopify_feed_v1_202608/internal/repository"
	"shopify_feed_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// ListingController 草稿批次控制器
type ListingController struct {
	listingService *service.ListingService
	draftRepo      repository.DraftRepository
}

func NewListingController(listingService *service.ListingService, draftRepo repository.DraftRepository) *ListingController {
	return &ListingController{listingService: listingService, draftRepo: draftRepo}
}

// ==================== API 方法 ====================

// PrepareDraft 生成草稿批次
// @Summary 按选择项生成平台草稿批次
// @Tags Listing
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param body body dto.PrepareDraftRequest false "生成参数(JSON 方式)"
// @Success 201 {object} dto.PrepareDraftResult
// @Router /api/listings/batches [post]
func (ctrl *ListingController) PrepareDraft(c *gin.Context) {
	var req dto.PrepareDraftRequest
	var selections []service.Selection

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		// 表单方式：支持附带选择文件
		req.ImportID = c.PostForm("import_id")
		req.SelectSKUs = splitCSVParam(c.PostForm("select_skus"))
		req.SelectCodes = splitCSVParam(c.PostForm("select_codes"))
		req.UseAIColors = c.PostForm("use_ai_colors") == "true"

		if fileHeader, err := c.FormFile("selections"); err == nil {
			file, err := fileHeader.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"code":    400,
					"message": "读取选择文件失败: " + err.Error(),
				})
				return
			}
			defer file.Close()
			selections, err = service.ParseSelectionCSV(file)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"code":    400,
					"message": "选择文件无效: " + err.Error(),
				})
				return
			}
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "参数错误: " + err.Error(),
			})
			return
		}
	}

	// 必须至少提供一种选择方式
	if len(selections) == 0 && len(req.SelectSKUs) == 0 && len(req.SelectCodes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "请提供选择文件或 select_skus / select_codes 之一",
		})
		return
	}

	ctx := c.Request.Context()
	result, err := ctrl.listingService.PrepareDraft(ctx, &req, selections)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "生成失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}

// ListBatches 获取批次列表
// @Summary 获取草稿批次列表
// @Tags Listing
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /api/listings/batches [get]
func (ctrl *ListingController) ListBatches(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	ctx := c.Request.Context()
	batches, total, err := ctrl.draftRepo.ListBatches(ctx, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "查询失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":     0,
		"message":  "success",
		"data":     batches,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// GetBatchDetail 获取批次详情
// @Summary 获取批次的商品草稿与变体草稿(按导出顺序)
// @Tags Listing
// @Param batch_id path string true "批次ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/listings/batches/{batch_id} [get]
func (ctrl *ListingController) GetBatchDetail(c *gin.Context) {
	batchID := c.Param("batch_id")

	ctx := c.Request.Context()
	batch, products, variants, err := ctrl.draftRepo.GetBatchDetail(ctx, batchID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"batch":    batch,
			"products": products,
			"variants": variants,
		},
	})
}

// ExportBatch 导出批次为平台商品导入格式的 CSV
// @Summary 按平台商品导入表头导出批次草稿
// @Tags Listing
// @Produce text/csv
// @Param batch_id path string true "批次ID"
// @Router /api/listings/batches/{batch_id}/export [get]
func (ctrl *ListingController) ExportBatch(c *gin.Context) {
	batchID := c.Param("batch_id")

	ctx := c.Request.Context()
	_, products, variants, err := ctrl.draftRepo.GetBatchDetail(ctx, batchID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="draft_%s.csv"`, batchID))

	w := csv.NewWriter(c.Writer)
	w.Write([]string{
		"Handle", "Title", "Body (HTML)", "Vendor", "Type", "Tags",
		"Option1 Name", "Option1 Value", "Option2 Name", "Option2 Value",
		"Variant SKU", "Variant Price", "Cost per item", "Variant Inventory Qty",
	})

	productByStyle := map[string]int{}
	for i, p := range products {
		productByStyle[p.StyleCode] = i
	}

	// 平台导入约定：每款第一行带商品列，后续变体行商品列留空
	seen := map[string]bool{}
	for _, v := range variants {
		row := make([]string, 14)
		if idx, ok := productByStyle[v.StyleCode]; ok && !seen[v.StyleCode] {
			p := products[idx]
			row[0] = p.Handle
			row[1] = p.Title
			row[2] = p.BodyHTML
			row[3] = p.Vendor
			row[4] = p.ProductType
			row[5] = strings.Join(p.Tags, ", ")
			seen[v.StyleCode] = true
		} else if ok {
			row[0] = products[idx].Handle
		}
		row[6] = "Color"
		row[7] = v.ColorName
		row[8] = "Size"
		row[9] = v.Size
		row[10] = v.SKU
		if v.Price != nil {
			row[11] = strconv.FormatFloat(*v.Price, 'f', 2, 64)
		}
		if v.Cost != nil {
			row[12] = strconv.FormatFloat(*v.Cost, 'f', 2, 64)
		}
		row[13] = strconv.Itoa(v.Quantity)
		w.Write(row)
	}
	w.Flush()
}

func splitCSVParam(val string) []string {
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
