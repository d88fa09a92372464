package model

import (
	"time"
)

// 字段长度限制，与前端表单约束保持一致
const (
	TitleMaxLength       = 100
	DescriptionMaxLength = 5000
)

// DefaultDurationDays 默认众筹周期（天）
const DefaultDurationDays = 30

// Project 众筹项目模型
type Project struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Title       string   `json:"title" gorm:"size:100;not null" binding:"required"`
	Description string   `json:"description" gorm:"type:text;not null" binding:"required"`
	Category    string   `json:"category" gorm:"default:'other'"`
	Tags        []string `json:"tags" gorm:"serializer:json"`
	IsAnonymous bool     `json:"is_anonymous" gorm:"default:false"`

	// 众筹信息
	FundingGoal    float64 `json:"funding_goal" gorm:"not null" binding:"required,gt=0"`
	CurrentFunding float64 `json:"current_funding" gorm:"default:0"`

	// 状态
	Status ProjectStatus `json:"status" gorm:"default:'draft'"`

	// 创建者信息
	OwnerAddress string `json:"owner_address" gorm:"not null"`

	// 区块链信息（仅在创建时链上注册成功后填充）
	ContractAddress string `json:"contract_address"`
	TransactionHash string `json:"transaction_hash"`

	// 时间信息
	Deadline time.Time `json:"deadline"`

	// 关联
	Transactions []FundingRecord `json:"transactions,omitempty" gorm:"foreignKey:ProjectID"`
}

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectStatusDraft     ProjectStatus = "draft"     // 草稿
	ProjectStatusActive    ProjectStatus = "active"    // 进行中
	ProjectStatusFunded    ProjectStatus = "funded"    // 达成
	ProjectStatusCancelled ProjectStatus = "cancelled" // 已取消
)

// TableName 自定义表名
func (Project) TableName() string {
	return "project"
}
