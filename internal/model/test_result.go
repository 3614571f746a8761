package model

import (
	"encoding/json"
)

// TestResultRecord 已完成测试会话的落库快照，供教师端报表查询。
// 会话本体仍由 SessionStore 管理，这里只保留扁平化结果。
type TestResultRecord struct {
	BaseModel
	UserID           string          `gorm:"size:64;index" json:"userId"`
	TestID           string          `gorm:"size:36;index" json:"testId"`
	OverallScore     int             `json:"overallScore"`
	RecommendedLevel string          `gorm:"size:32" json:"recommendedLevel"`
	RecommendedPace  string          `gorm:"size:16" json:"recommendedPace"`
	AnalysisJSON     json.RawMessage `gorm:"type:json" json:"analysis"`
}

func (TestResultRecord) TableName() string {
	return "test_results"
}
