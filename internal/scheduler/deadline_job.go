package scheduler

import (
	"sync"
	"time"

	"github.com/ghostfund/gfs/internal/config"
	"github.com/ghostfund/gfs/internal/logger"
	"github.com/ghostfund/gfs/internal/model"
	"github.com/go-co-op/gocron/v2"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// deadlinePoolSize 结算协程池大小
const deadlinePoolSize = 4

// DeadlineJob 项目截止时间清理任务
// 定期扫描已过截止时间仍为active的项目：达标的置为funded，
// 未达标的置为cancelled。取消状态只能由这里产生，没有对外的取消接口。
type DeadlineJob struct {
	db     *gorm.DB
	config *config.Config
}

// NewDeadlineJob 创建截止时间清理任务
func NewDeadlineJob(db *gorm.DB, cfg *config.Config) *DeadlineJob {
	return &DeadlineJob{
		db:     db,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *DeadlineJob) GetName() string {
	return "project_deadline_sweeper"
}

// GetSchedule 获取调度配置
func (j *DeadlineJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Scheduler.Interval) * time.Second)
}

// Execute 执行任务
func (j *DeadlineJob) Execute() {
	now := time.Now()

	var projects []model.Project
	err := j.db.Where("status = ? AND deadline < ?", model.ProjectStatusActive, now).
		Find(&projects).Error
	if err != nil {
		logger.Error("Failed to fetch expired projects: %v", err)
		return
	}

	if len(projects) == 0 {
		return
	}

	pool, err := ants.NewPool(deadlinePoolSize)
	if err != nil {
		logger.Error("Failed to create worker pool: %v", err)
		return
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range projects {
		project := projects[i]
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			j.settle(&project)
		}); err != nil {
			wg.Done()
			logger.Error("Failed to submit settle task for project %s: %v", project.ID, err)
		}
	}
	wg.Wait()

	logger.Info("Deadline sweep completed, processed %d expired projects", len(projects))
}

// settle 结算单个过期项目
func (j *DeadlineJob) settle(project *model.Project) {
	newStatus := model.ProjectStatusCancelled
	if project.CurrentFunding >= project.FundingGoal {
		newStatus = model.ProjectStatusFunded
	}

	// 带状态条件的更新，项目被并发翻转时不做覆盖
	res := j.db.Model(&model.Project{}).
		Where("id = ? AND status = ?", project.ID, model.ProjectStatusActive).
		Update("status", newStatus)
	if res.Error != nil {
		logger.Error("Failed to update project %s status: %v", project.ID, res.Error)
		return
	}
	if res.RowsAffected > 0 {
		logger.Info("Updated expired project %s status from active to %s", project.ID, newStatus)
	}
}
