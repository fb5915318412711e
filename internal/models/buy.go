package models

import "time"

// Buy records a completed sale of one item.
type Buy struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID     int64     `gorm:"column:user_id;index;not null" json:"user_id"`
	ItemID     int64     `gorm:"column:item_id;index;not null" json:"item_id"`
	Quantity   int       `gorm:"column:quantity;not null;default:1" json:"quantity"`
	TotalPrice float64   `gorm:"column:total_price;not null" json:"total_price"`
	IsRefunded bool      `gorm:"column:is_refunded;not null;default:false" json:"is_refunded"`
	BuyTime    time.Time `gorm:"column:buy_time;autoCreateTime" json:"buy_time"`
}

func (Buy) TableName() string {
	return "buys"
}

// RefundEntry is the joined view used by the refund listing screen.
type RefundEntry struct {
	BuyID            int64   `json:"buy_id"`
	TelegramID       int64   `json:"telegram_id"`
	TelegramUsername string  `json:"telegram_username"`
	ProductName      string  `json:"product_name"`
	Quantity         int     `json:"quantity"`
	TotalPrice       float64 `json:"total_price"`
}
