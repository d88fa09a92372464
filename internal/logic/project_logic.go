package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ghostfund/gfs/internal/chain"
	"github.com/ghostfund/gfs/internal/logger"
	"github.com/ghostfund/gfs/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListLimit 列表查询的固定上限
const ListLimit = 100

// TransferService 链上转账服务接口，测试时可替换为假实现
type TransferService interface {
	Enabled() bool
	RegisterProject(ctx context.Context, project *model.Project) (*chain.Registration, error)
	ProcessFunding(ctx context.Context, projectID string, amount float64, funderAddress string) (*chain.Receipt, error)
}

// ProjectLogic 项目业务逻辑
type ProjectLogic struct {
	db    *gorm.DB
	chain TransferService
}

// NewProjectLogic 创建项目业务逻辑
func NewProjectLogic(db *gorm.DB, chainSvc TransferService) *ProjectLogic {
	return &ProjectLogic{db: db, chain: chainSvc}
}

// CreateProjectInput 创建项目的输入
type CreateProjectInput struct {
	Title        string
	Description  string
	FundingGoal  float64
	OwnerAddress string
	Duration     int // 众筹周期（天），缺省30
	Category     string
	Tags         []string
	IsAnonymous  bool
}

// CreateProjectResult 创建项目的结果
// Linked 表示链上注册是否成功；注册失败时项目照常持久化，Linked 为 false。
type CreateProjectResult struct {
	Project *model.Project
	Linked  bool
}

// ListFilters 列表查询过滤条件，空值或"all"表示不过滤
type ListFilters struct {
	Status   string
	Category string
	Search   string
}

// FundProjectResult 出资结果
type FundProjectResult struct {
	Project *model.Project
	Receipt *chain.Receipt
}

// CreateProject 创建项目
// 先落库，再尽力而为地做链上注册：注册成功则回写合约地址和交易哈希，
// 失败只记日志，不影响创建结果。
func (p *ProjectLogic) CreateProject(ctx context.Context, input CreateProjectInput) (*CreateProjectResult, error) {
	if err := validateCreateInput(&input); err != nil {
		return nil, err
	}

	now := time.Now()
	project := &model.Project{
		ID:             uuid.NewString(),
		Title:          input.Title,
		Description:    input.Description,
		Category:       input.Category,
		Tags:           input.Tags,
		IsAnonymous:    input.IsAnonymous,
		FundingGoal:    input.FundingGoal,
		CurrentFunding: 0,
		Status:         model.ProjectStatusActive,
		OwnerAddress:   input.OwnerAddress,
		Deadline:       now.Add(time.Duration(input.Duration) * 24 * time.Hour),
	}

	if err := p.db.WithContext(ctx).Create(project).Error; err != nil {
		return nil, fmt.Errorf("创建项目失败: %w", err)
	}

	result := &CreateProjectResult{Project: project}

	// 链上注册为尽力而为，失败不上抛
	if p.chain != nil && p.chain.Enabled() {
		reg, err := p.chain.RegisterProject(ctx, project)
		if err != nil {
			logger.Warn("Failed to register project %s on chain: %v", project.ID, err)
			return result, nil
		}

		updates := map[string]interface{}{
			"contract_address": reg.ProjectAddress,
			"transaction_hash": reg.TransactionHash,
		}
		if err := p.db.WithContext(ctx).Model(project).Updates(updates).Error; err != nil {
			logger.Warn("Failed to save chain registration for project %s: %v", project.ID, err)
			return result, nil
		}
		project.ContractAddress = reg.ProjectAddress
		project.TransactionHash = reg.TransactionHash
		result.Linked = true
	}

	return result, nil
}

// GetProjects 获取项目列表，按创建时间倒序，最多返回 ListLimit 条
func (p *ProjectLogic) GetProjects(ctx context.Context, filters ListFilters) ([]model.Project, error) {
	query := p.db.WithContext(ctx).Model(&model.Project{})

	if filters.Status != "" && filters.Status != "all" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Category != "" && filters.Category != "all" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var projects []model.Project
	if err := query.Order("created_at DESC").Limit(ListLimit).Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("获取项目列表失败: %w", err)
	}

	return projects, nil
}

// GetProject 获取项目详情，含全部出资记录
func (p *ProjectLogic) GetProject(ctx context.Context, id string) (*model.Project, error) {
	var project model.Project
	err := p.db.WithContext(ctx).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&project, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("获取项目详情失败: %w", err)
	}

	return &project, nil
}

// FundProject 处理一笔出资
// 顺序：校验 → 读取项目 → 链上交易 → 落库。链上交易失败时整笔出资失败，
// 不产生任何变更。落库阶段在单个事务内完成，金额累加和达标翻转都是带
// 状态条件的UPDATE，两笔并发出资不会互相覆盖。
func (p *ProjectLogic) FundProject(ctx context.Context, projectID string, amount float64, funderAddress string) (*FundProjectResult, error) {
	if projectID == "" {
		return nil, newValidationError("项目ID不能为空")
	}
	if amount <= 0 {
		return nil, newValidationError("出资金额必须大于0")
	}
	if funderAddress == "" {
		return nil, newValidationError("出资者地址不能为空")
	}

	var project model.Project
	if err := p.db.WithContext(ctx).First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("获取项目失败: %w", err)
	}

	if project.Status != model.ProjectStatusActive {
		return nil, &StateConflictError{Status: project.Status}
	}

	// 出资路径上链上交易是必需的，失败则中止
	receipt, err := p.chain.ProcessFunding(ctx, projectID, amount, funderAddress)
	if err != nil {
		return nil, fmt.Errorf("出资交易处理失败: %w", err)
	}

	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 带状态条件的金额累加，项目在读取后被并发翻转时这里不会命中
		res := tx.Model(&model.Project{}).
			Where("id = ? AND status = ?", projectID, model.ProjectStatusActive).
			Updates(map[string]interface{}{
				"current_funding": gorm.Expr("current_funding + ?", amount),
				"updated_at":      time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var current model.Project
			if err := tx.First(&current, "id = ?", projectID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProjectNotFound
				}
				return err
			}
			return &StateConflictError{Status: current.Status}
		}

		record := &model.FundingRecord{
			ProjectID:       projectID,
			FunderAddress:   funderAddress,
			Amount:          amount,
			TransactionHash: receipt.Hash,
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		// 达标翻转，条件内含目标金额检查，保持原子性
		return tx.Model(&model.Project{}).
			Where("id = ? AND status = ? AND current_funding >= funding_goal",
				projectID, model.ProjectStatusActive).
			Update("status", model.ProjectStatusFunded).Error
	})
	if err != nil {
		var stateErr *StateConflictError
		if errors.Is(err, ErrProjectNotFound) || errors.As(err, &stateErr) {
			return nil, err
		}
		return nil, fmt.Errorf("保存出资记录失败: %w", err)
	}

	updated, err := p.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &FundProjectResult{Project: updated, Receipt: receipt}, nil
}

// GetProjectStats 获取全部项目的统计信息
func (p *ProjectLogic) GetProjectStats(ctx context.Context) (map[string]interface{}, error) {
	db := p.db.WithContext(ctx)

	var totalProjects int64
	if err := db.Model(&model.Project{}).Count(&totalProjects).Error; err != nil {
		return nil, fmt.Errorf("获取项目统计失败: %w", err)
	}

	countByStatus := func(status model.ProjectStatus) (int64, error) {
		var n int64
		err := db.Model(&model.Project{}).Where("status = ?", status).Count(&n).Error
		return n, err
	}

	activeProjects, err := countByStatus(model.ProjectStatusActive)
	if err != nil {
		return nil, fmt.Errorf("获取项目统计失败: %w", err)
	}
	fundedProjects, err := countByStatus(model.ProjectStatusFunded)
	if err != nil {
		return nil, fmt.Errorf("获取项目统计失败: %w", err)
	}
	cancelledProjects, err := countByStatus(model.ProjectStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("获取项目统计失败: %w", err)
	}

	// 总筹款金额
	var totalRaised float64
	if err := db.Model(&model.Project{}).
		Select("COALESCE(SUM(current_funding), 0)").
		Scan(&totalRaised).Error; err != nil {
		return nil, fmt.Errorf("获取项目统计失败: %w", err)
	}

	// 出资人数量（去重）
	var totalFunders int64
	if err := db.Model(&model.FundingRecord{}).
		Distinct("funder_address").
		Count(&totalFunders).Error; err != nil {
		return nil, fmt.Errorf("获取项目统计失败: %w", err)
	}

	return map[string]interface{}{
		"totalProjects":     totalProjects,
		"activeProjects":    activeProjects,
		"fundedProjects":    fundedProjects,
		"cancelledProjects": cancelledProjects,
		"totalRaised":       totalRaised,
		"totalFunders":      totalFunders,
	}, nil
}

// validateCreateInput 校验创建项目的输入并填充默认值
func validateCreateInput(input *CreateProjectInput) error {
	if input.Title == "" {
		return newValidationError("项目标题不能为空")
	}
	if len(input.Title) > model.TitleMaxLength {
		return newValidationError("项目标题不能超过%d个字符", model.TitleMaxLength)
	}
	if input.Description == "" {
		return newValidationError("项目描述不能为空")
	}
	if len(input.Description) > model.DescriptionMaxLength {
		return newValidationError("项目描述不能超过%d个字符", model.DescriptionMaxLength)
	}
	if input.FundingGoal <= 0 {
		return newValidationError("目标金额必须大于0")
	}
	if input.OwnerAddress == "" {
		return newValidationError("创建者地址不能为空")
	}
	if input.Duration <= 0 {
		input.Duration = model.DefaultDurationDays
	}
	if input.Category == "" {
		input.Category = "other"
	}
	return nil
}
