package scheduler

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/michojekunle/BitGive/internal/config"
	"github.com/michojekunle/BitGive/internal/logger"
	"github.com/michojekunle/BitGive/internal/model"
	"gorm.io/gorm"
)

// CampaignStatusJob 活动状态更新任务。
// 捐赠入账时会直接校验结束时间，这里只做状态位收敛，便于列表查询。
type CampaignStatusJob struct {
	db     *gorm.DB
	config *config.Config
}

// NewCampaignStatusJob 创建活动状态更新任务
func NewCampaignStatusJob(db *gorm.DB, cfg *config.Config) *CampaignStatusJob {
	return &CampaignStatusJob{
		db:     db,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *CampaignStatusJob) GetName() string {
	return "campaign_status_updater"
}

// GetSchedule 获取调度配置
func (j *CampaignStatusJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Scheduler.Interval) * time.Second)
}

// Execute 执行任务
func (j *CampaignStatusJob) Execute() {
	logger.Info("Starting campaign status update task")

	now := time.Now()

	// 查找仍处于激活状态的活动
	var campaigns []model.CampaignModel
	if err := j.db.Where("active = ?", true).Find(&campaigns).Error; err != nil {
		logger.Error("Failed to fetch campaigns: %v", err)
		return
	}

	updatedCount := 0

	for _, campaign := range campaigns {
		if !campaign.HasEnded(now) {
			continue
		}

		if err := j.db.Model(&campaign).Update("active", false).Error; err != nil {
			logger.Error("Failed to deactivate campaign %d: %v", campaign.Id, err)
			continue
		}

		logger.Info("Campaign %d deactivated after end time %s",
			campaign.Id, campaign.EndTime().Format(time.RFC3339))
		updatedCount++
	}

	logger.Info("Campaign status update completed. Updated %d campaigns", updatedCount)
}
