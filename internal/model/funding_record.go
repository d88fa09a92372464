package model

import (
	"time"
)

// FundingRecord 出资记录，项目的交易明细
// 只追加不修改，项目的 current_funding 即全部出资金额之和。
type FundingRecord struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"timestamp"`

	ProjectID       string  `json:"project_id" gorm:"size:36;index;not null"`
	FunderAddress   string  `json:"funder_address" gorm:"not null"`
	Amount          float64 `json:"amount" gorm:"not null"`
	TransactionHash string  `json:"transaction_hash"`
}

// TableName 自定义表名
func (FundingRecord) TableName() string {
	return "funding_record"
}
