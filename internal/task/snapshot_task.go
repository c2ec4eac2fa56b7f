package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"shopify_feed_v1_202608/internal/service"
)

// ==================== SnapshotSyncTask 平台快照同步任务 ====================

// SnapshotSyncTask 定时拉取平台全量商品，替换本地快照。
// 快照供标题去重、SKU 查重与选款对照使用。
type SnapshotSyncTask struct {
	snapshotService *service.SnapshotService
	cron            *cron.Cron

	spec    string
	timeout time.Duration
}

// NewSnapshotSyncTask 创建快照同步任务
func NewSnapshotSyncTask(snapshotService *service.SnapshotService) *SnapshotSyncTask {
	return &SnapshotSyncTask{
		snapshotService: snapshotService,
		cron:            cron.New(cron.WithSeconds()),
		spec:            "0 0 */4 * * *", // 每 4 小时
		timeout:         20 * time.Minute,
	}
}

// SetSchedule 覆盖默认执行计划
func (t *SnapshotSyncTask) SetSchedule(spec string) {
	t.spec = spec
}

// Start 启动定时任务
func (t *SnapshotSyncTask) Start() {
	// 首次执行（延迟 30 秒，等服务完全就绪）
	go func() {
		time.Sleep(30 * time.Second)
		t.runOnce()
	}()

	_, err := t.cron.AddFunc(t.spec, t.runOnce)
	if err != nil {
		log.Printf("[SnapshotSyncTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Printf("[SnapshotSyncTask] 已启动 (%s)", t.spec)
}

// Stop 停止任务
func (t *SnapshotSyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[SnapshotSyncTask] 已停止")
}

func (t *SnapshotSyncTask) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	log.Println("[SnapshotSyncTask] 开始同步平台快照...")
	start := time.Now()
	productCount, variantCount, err := t.snapshotService.Refresh(ctx)
	if err != nil {
		log.Printf("[SnapshotSyncTask] 同步失败: %v", err)
		return
	}
	log.Printf("[SnapshotSyncTask] 同步完成: %d 商品 %d 变体, 耗时 %v",
		productCount, variantCount, time.Since(start).Round(time.Millisecond))
}
