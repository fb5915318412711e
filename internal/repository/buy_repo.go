package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nalyk/shopbot/internal/models"
)

// BuyRepository handles sale records and refunds.
type BuyRepository struct {
	db *gorm.DB
}

func NewBuyRepository(db *gorm.DB) *BuyRepository {
	return &BuyRepository{db: db}
}

// Create records a sale.
func (r *BuyRepository) Create(buy *models.Buy) error {
	return r.db.Create(buy).Error
}

const refundSelect = `buys.id AS buy_id, users.telegram_id, users.telegram_username,
categories.name AS product_name, buys.quantity, buys.total_price`

// GetRefundPage returns one page of refundable (not yet refunded) sales,
// newest first, joined with buyer and product info.
func (r *BuyRepository) GetRefundPage(page, pageSize int) ([]models.RefundEntry, error) {
	var entries []models.RefundEntry
	err := r.db.Model(&models.Buy{}).
		Select(refundSelect).
		Joins("JOIN users ON users.id = buys.user_id").
		Joins("JOIN items ON items.id = buys.item_id").
		Joins("JOIN categories ON categories.id = items.category_id").
		Where("buys.is_refunded = ?", false).
		Order("buys.buy_time DESC").
		Offset(page * pageSize).Limit(pageSize).
		Scan(&entries).Error
	return entries, err
}

// CountRefundable counts sales that can still be refunded.
func (r *BuyRepository) CountRefundable() (int64, error) {
	var count int64
	err := r.db.Model(&models.Buy{}).Where("is_refunded = ?", false).Count(&count).Error
	return count, err
}

// GetRefundEntry loads one refundable sale by buy id.
func (r *BuyRepository) GetRefundEntry(buyID int64) (*models.RefundEntry, error) {
	var entry models.RefundEntry
	res := r.db.Model(&models.Buy{}).
		Select(refundSelect).
		Joins("JOIN users ON users.id = buys.user_id").
		Joins("JOIN items ON items.id = buys.item_id").
		Joins("JOIN categories ON categories.id = items.category_id").
		Where("buys.id = ? AND buys.is_refunded = ?", buyID, false).
		Scan(&entry)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &entry, nil
}

// Refund reverses a sale as one transaction: the buy is marked refunded,
// the buyer's consumption counter is reduced by the sale amount, and the
// item goes back into stock. Re-running on an already refunded buy is a
// no-op error, so double-confirmation cannot refund twice.
func (r *BuyRepository) Refund(buyID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var buy models.Buy
		if err := tx.Where("id = ? AND is_refunded = ?", buyID, false).First(&buy).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Model(&models.Buy{}).Where("id = ?", buy.ID).
			Update("is_refunded", true).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", buy.UserID).
			Update("consume_records", gorm.Expr("consume_records - ?", buy.TotalPrice)).Error; err != nil {
			return err
		}
		return tx.Model(&models.Item{}).Where("id = ?", buy.ItemID).
			Update("is_sold", false).Error
	})
}

// GetByTimedelta returns non-refunded sales from the last `days` days.
func (r *BuyRepository) GetByTimedelta(days int) ([]models.Buy, error) {
	since := time.Now().AddDate(0, 0, -days)
	var buys []models.Buy
	err := r.db.Where("buy_time >= ? AND is_refunded = ?", since, false).Find(&buys).Error
	return buys, err
}
