package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopify_feed_v1_202608/internal/repository"
	"shopify_feed_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// FeedController 货盘导入控制器
type FeedController struct {
	feedService *service.FeedService
	feedRepo    repository.FeedRepository
}

func NewFeedController(feedService *service.FeedService, feedRepo repository.FeedRepository) *FeedController {
	return &FeedController{feedService: feedService, feedRepo: feedRepo}
}

// ==================== API 方法 ====================

// ImportFeed 导入货盘 CSV
// @Summary 上传 NuOrder 导出 CSV，解析入库
// @Tags Feed
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "货盘 CSV 文件"
// @Success 201 {object} service.ImportResult
// @Router /api/feed/imports [post]
func (ctrl *FeedController) ImportFeed(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "缺少上传文件: " + err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "读取上传文件失败: " + err.Error(),
		})
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	result, err := ctrl.feedService.ImportCSV(ctx, file, fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "导入失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}

// ListImports 获取导入历史
// @Summary 获取最近的导入批次列表
// @Tags Feed
// @Param limit query int false "数量上限" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /api/feed/imports [get]
func (ctrl *FeedController) ListImports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	ctx := c.Request.Context()
	imports, err := ctrl.feedRepo.ListImports(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "查询失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    imports,
	})
}

// GetImport 获取导入详情
// @Summary 获取单个导入批次信息
// @Tags Feed
// @Param import_id path string true "导入批次ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/feed/imports/{import_id} [get]
func (ctrl *FeedController) GetImport(c *gin.Context) {
	importID := c.Param("import_id")

	ctx := c.Request.Context()
	imp, err := ctrl.feedRepo.GetImport(ctx, importID)
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
		"data":    imp,
	})
}

// GetColorVocab 提取颜色词表
// @Summary 提取导入批次的原始颜色词表，供维护颜色映射
// @Tags Feed
// @Param import_id path string true "导入批次ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/feed/imports/{import_id}/color-vocab [get]
func (ctrl *FeedController) GetColorVocab(c *gin.Context) {
	importID := c.Param("import_id")

	ctx := c.Request.Context()
	vocab, err := ctrl.feedService.ExtractColorVocab(ctx, importID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "提取失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    vocab,
	})
}
