package repository

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nalyk/shopbot/internal/models"
)

// UserRepository handles shop user records and their ledger counters.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByTelegramID finds a user by Telegram id.
func (r *UserRepository) GetByTelegramID(telegramID int64) (*models.User, error) {
	var user models.User
	if err := r.db.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEntity resolves a free-text identifier: a numeric Telegram id or a
// username with or without the leading @.
func (r *UserRepository) GetByEntity(entity string) (*models.User, error) {
	entity = strings.TrimSpace(entity)
	if id, err := strconv.ParseInt(entity, 10, 64); err == nil {
		return r.GetByTelegramID(id)
	}
	username := strings.TrimPrefix(entity, "@")
	var user models.User
	if err := r.db.Where("telegram_username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// UpdateUsername keeps the stored username in sync with Telegram.
func (r *UserRepository) UpdateUsername(userID int64, username string) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).
		Update("telegram_username", username).Error
}

// AddTopUp increments the top-up ledger counter. Counters only ever grow,
// which keeps the credit history auditable.
func (r *UserRepository) AddTopUp(userID int64, amount float64) error {
	return r.addToCounter(userID, "top_up_amount", amount)
}

// AddConsume increments the consumption ledger counter.
func (r *UserRepository) AddConsume(userID int64, amount float64) error {
	return r.addToCounter(userID, "consume_records", amount)
}

func (r *UserRepository) addToCounter(userID int64, column string, amount float64) error {
	res := r.db.Model(&models.User{}).Where("id = ?", userID).
		Update(column, gorm.Expr(column+" + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetActive returns users that can still receive broadcasts.
func (r *UserRepository) GetActive() ([]models.User, error) {
	var users []models.User
	err := r.db.Where("can_receive_messages = ?", true).Find(&users).Error
	return users, err
}

// CountAll counts every registered user.
func (r *UserRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// SetCanReceiveMessages flags whether broadcasts can be delivered to the
// user. Cleared when Telegram reports the bot blocked or the account gone.
func (r *UserRepository) SetCanReceiveMessages(userID int64, can bool) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).
		Update("can_receive_messages", can).Error
}

// GetByTimedelta returns one page of users registered within the last
// `days` days, newest first, plus the total count in the window.
func (r *UserRepository) GetByTimedelta(days, page, pageSize int) ([]models.User, int64, error) {
	since := time.Now().AddDate(0, 0, -days)
	var total int64
	if err := r.db.Model(&models.User{}).Where("registered_at >= ?", since).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := r.db.Where("registered_at >= ?", since).
		Order("registered_at DESC").
		Offset(page * pageSize).Limit(pageSize).
		Find(&users).Error
	return users, total, err
}
