package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/nalyk/shopbot/internal/models"
)

// DepositRepository handles crypto deposit records.
type DepositRepository struct {
	db *gorm.DB
}

func NewDepositRepository(db *gorm.DB) *DepositRepository {
	return &DepositRepository{db: db}
}

// Create records a deposit.
func (r *DepositRepository) Create(deposit *models.Deposit) error {
	return r.db.Create(deposit).Error
}

// GetByTimedelta returns deposits from the last `days` days.
func (r *DepositRepository) GetByTimedelta(days int) ([]models.Deposit, error) {
	since := time.Now().AddDate(0, 0, -days)
	var deposits []models.Deposit
	err := r.db.Where("deposit_time >= ?", since).Find(&deposits).Error
	return deposits, err
}
