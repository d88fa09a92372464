package handler

import (
	"time"

	"github.com/ghostfund/gfs/internal/chain"
	"github.com/ghostfund/gfs/internal/model"
)

// 请求模型

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description" binding:"required"`
	FundingGoal  float64  `json:"fundingGoal" binding:"required,gt=0"`
	OwnerAddress string   `json:"ownerAddress" binding:"required"`
	Duration     int      `json:"duration"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
	IsAnonymous  bool     `json:"isAnonymous"`
}

// FundProjectRequest 出资请求
type FundProjectRequest struct {
	ProjectID     string  `json:"projectId" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	FunderAddress string  `json:"funderAddress" binding:"required"`
}

// DescriptionRequest 仅携带项目描述的请求（风险分析、改进建议）
type DescriptionRequest struct {
	Description string `json:"description" binding:"required"`
}

// ChatRequest 聊天请求
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// 响应模型

// ProjectResponse 项目响应模型
type ProjectResponse struct {
	ID              string                `json:"id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Category        string                `json:"category"`
	Tags            []string              `json:"tags,omitempty"`
	IsAnonymous     bool                  `json:"isAnonymous"`
	FundingGoal     float64               `json:"fundingGoal"`
	CurrentFunding  float64               `json:"currentFunding"`
	Status          string                `json:"status"`
	OwnerAddress    string                `json:"ownerAddress"`
	ContractAddress string                `json:"contractAddress,omitempty"`
	TransactionHash string                `json:"transactionHash,omitempty"`
	Deadline        time.Time             `json:"deadline"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
	Transactions    []TransactionResponse `json:"transactions,omitempty"`
}

// TransactionResponse 出资记录响应模型
type TransactionResponse struct {
	FunderAddress   string    `json:"funderAddress"`
	Amount          float64   `json:"amount"`
	Timestamp       time.Time `json:"timestamp"`
	TransactionHash string    `json:"transactionHash"`
}

// ProjectListResponse 项目列表响应
type ProjectListResponse struct {
	Success  bool              `json:"success"`
	Projects []ProjectResponse `json:"projects"`
}

// ProjectDetailResponse 项目详情响应
type ProjectDetailResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Project ProjectResponse `json:"project"`
}

// FundProjectResponse 出资响应
type FundProjectResponse struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	Transaction *chain.Receipt  `json:"transaction"`
	Project     ProjectResponse `json:"project"`
}

// AnalyzeResponse 风险分析响应
type AnalyzeResponse struct {
	Success        bool   `json:"success"`
	Analysis       string `json:"analysis"`
	RiskScore      int    `json:"riskScore"`
	Recommendation string `json:"recommendation"`
}

// SuggestionsResponse 改进建议响应
type SuggestionsResponse struct {
	Success     bool   `json:"success"`
	Suggestions string `json:"suggestions"`
}

// ChatResponse 聊天响应
type ChatResponse struct {
	Success   bool     `json:"success"`
	Response  string   `json:"response"`
	Citations []string `json:"citations,omitempty"`
}

// StatsResponse 项目统计响应
type StatsResponse struct {
	Success bool                   `json:"success"`
	Stats   map[string]interface{} `json:"stats"`
}

// 转换函数

// ToProjectResponse 将数据库模型转换为响应模型
func ToProjectResponse(project *model.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:              project.ID,
		Title:           project.Title,
		Description:     project.Description,
		Category:        project.Category,
		Tags:            project.Tags,
		IsAnonymous:     project.IsAnonymous,
		FundingGoal:     project.FundingGoal,
		CurrentFunding:  project.CurrentFunding,
		Status:          string(project.Status),
		OwnerAddress:    project.OwnerAddress,
		ContractAddress: project.ContractAddress,
		TransactionHash: project.TransactionHash,
		Deadline:        project.Deadline,
		CreatedAt:       project.CreatedAt,
		UpdatedAt:       project.UpdatedAt,
	}
	if len(project.Transactions) > 0 {
		resp.Transactions = ToTransactionResponseList(project.Transactions)
	}
	return resp
}

// ToProjectResponseList 将数据库模型列表转换为响应模型列表
func ToProjectResponseList(projects []model.Project) []ProjectResponse {
	result := make([]ProjectResponse, len(projects))
	for i, project := range projects {
		result[i] = ToProjectResponse(&project)
	}
	return result
}

// ToTransactionResponseList 将出资记录列表转换为响应模型列表
func ToTransactionResponseList(records []model.FundingRecord) []TransactionResponse {
	result := make([]TransactionResponse, len(records))
	for i, record := range records {
		result[i] = TransactionResponse{
			FunderAddress:   record.FunderAddress,
			Amount:          record.Amount,
			Timestamp:       record.CreatedAt,
			TransactionHash: record.TransactionHash,
		}
	}
	return result
}
