package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopify_feed_v1_202608/internal/repository"
	"shopify_feed_v1_202608/internal/service"
)

// SnapshotController 平台快照控制器
type SnapshotController struct {
	snapshotService *service.SnapshotService
	snapshotRepo    repository.SnapshotRepository
}

func NewSnapshotController(snapshotService *service.SnapshotService, snapshotRepo repository.SnapshotRepository) *SnapshotController {
	return &SnapshotController{snapshotService: snapshotService, snapshotRepo: snapshotRepo}
}

// RefreshSnapshot 手动刷新快照
// @Summary 立即拉取平台全量商品并替换本地快照
// @Tags Snapshot
// @Success 200 {object} map[string]interface{}
// @Router /api/snapshot/refresh [post]
func (ctrl *SnapshotController) RefreshSnapshot(c *gin.Context) {
	ctx := c.Request.Context()
	productCount, variantCount, err := ctrl.snapshotService.Refresh(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "刷新失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"product_count": productCount,
			"variant_count": variantCount,
		},
	})
}

// ListSnapshotProducts 查询快照商品
// @Summary 分页查询本地平台快照
// @Tags Snapshot
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /api/snapshot/products [get]
func (ctrl *SnapshotController) ListSnapshotProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	ctx := c.Request.Context()
	products, total, err := ctrl.snapshotRepo.ListProducts(ctx, page, pageSize)
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
		"data":     products,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}
