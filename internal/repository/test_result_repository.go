package repository

import (
	"edumind_backend/internal/model"

	"gorm.io/gorm"
)

type TestResultRepository struct {
	DB *gorm.DB
}

func NewTestResultRepository(db *gorm.DB) *TestResultRepository {
	return &TestResultRepository{DB: db}
}

func (r *TestResultRepository) Create(record *model.TestResultRecord) error {
	return r.DB.Create(record).Error
}

func (r *TestResultRepository) FindByUserID(userID string) ([]model.TestResultRecord, error) {
	var records []model.TestResultRecord
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *TestResultRepository) FindLatestByUserID(userID string) (*model.TestResultRecord, error) {
	var record model.TestResultRecord
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}
