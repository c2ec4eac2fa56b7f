package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopify_feed_v1_202608/internal/service"
)

// CandidateController 选款候选控制器
type CandidateController struct {
	candidateService *service.CandidateService
}

func NewCandidateController(candidateService *service.CandidateService) *CandidateController {
	return &CandidateController{candidateService: candidateService}
}

// GetCandidates 获取选款候选报告
// @Summary 对指定导入批次打分并对照平台快照分组
// @Tags Candidate
// @Param import_id query string false "导入批次ID，缺省取最近一次"
// @Success 200 {object} service.CandidateReport
// @Router /api/candidates [get]
func (ctrl *CandidateController) GetCandidates(c *gin.Context) {
	importID := c.Query("import_id")

	ctx := c.Request.Context()
	report, err := ctrl.candidateService.BuildReport(ctx, importID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "生成候选报告失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    report,
	})
}
