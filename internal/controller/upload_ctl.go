package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopify_feed_v1_202608/internal/api/dto"
	"shopify_feed_v1_202608/internal/service"
)

// UploadController 批次上传控制器
type UploadController struct {
	uploadService *service.UploadService
}

func NewUploadController(uploadService *service.UploadService) *UploadController {
	return &UploadController{uploadService: uploadService}
}

// UploadBatch 上传草稿批次
// @Summary 把草稿批次推送到平台并回填库存成本
// @Tags Upload
// @Accept json
// @Param batch_id path string true "批次ID"
// @Param body body dto.UploadBatchRequest false "上传参数"
// @Success 200 {object} dto.UploadBatchResult
// @Router /api/listings/batches/{batch_id}/upload [post]
func (ctrl *UploadController) UploadBatch(c *gin.Context) {
	batchID := c.Param("batch_id")

	var req dto.UploadBatchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "参数错误: " + err.Error(),
			})
			return
		}
	}

	ctx := c.Request.Context()
	result, err := ctrl.uploadService.UploadBatch(ctx, batchID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "上传失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}
