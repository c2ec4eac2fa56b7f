package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopify_feed_v1_202608/internal/controller"
	"shopify_feed_v1_202608/internal/middleware"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	feedCtl *controller.FeedController,
	listingCtl *controller.ListingController,
	candidateCtl *controller.CandidateController,
	uploadCtl *controller.UploadController,
	snapshotCtl *controller.SnapshotController) {

	r.Use(middleware.RequestLog())

	// 健康检查
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API 路由组
	api := r.Group("/api")
	{
		// feed 货盘导入
		feed := api.Group("/feed")
		{
			// POST /api/feed/imports
			feed.POST("/imports", feedCtl.ImportFeed)
			feed.GET("/imports", feedCtl.ListImports)
			feed.GET("/imports/:import_id", feedCtl.GetImport)
			// GET /api/feed/imports/:import_id/color-vocab
			feed.GET("/imports/:import_id/color-vocab", feedCtl.GetColorVocab)
		}

		// listings 草稿批次
		listings := api.Group("/listings")
		{
			// POST /api/listings/batches
			listings.POST("/batches", listingCtl.PrepareDraft)
			listings.GET("/batches", listingCtl.ListBatches)
			listings.GET("/batches/:batch_id", listingCtl.GetBatchDetail)
			// 平台导入格式 CSV 导出
			listings.GET("/batches/:batch_id/export", listingCtl.ExportBatch)
			// 推送到平台
			listings.POST("/batches/:batch_id/upload", uploadCtl.UploadBatch)
		}

		// candidates 选款候选
		api.GET("/candidates", candidateCtl.GetCandidates)

		// snapshot 平台快照
		snapshot := api.Group("/snapshot")
		{
			snapshot.POST("/refresh", snapshotCtl.RefreshSnapshot)
			snapshot.GET("/products", snapshotCtl.ListSnapshotProducts)
		}
	}
}
