package models

import "time"

// User maps to the `users` table. TopUpAmount and ConsumeRecords are
// monotonic ledger counters; the spendable balance is their difference.
type User struct {
	ID                 int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TelegramID         int64     `gorm:"column:telegram_id;uniqueIndex;not null" json:"telegram_id"`
	TelegramUsername   string    `gorm:"column:telegram_username;size:500" json:"telegram_username"`
	TopUpAmount        float64   `gorm:"column:top_up_amount;not null;default:0" json:"top_up_amount"`
	ConsumeRecords     float64   `gorm:"column:consume_records;not null;default:0" json:"consume_records"`
	CanReceiveMessages bool      `gorm:"column:can_receive_messages;not null;default:true" json:"can_receive_messages"`
	RegisteredAt       time.Time `gorm:"column:registered_at;autoCreateTime" json:"registered_at"`
}

func (User) TableName() string {
	return "users"
}

// Balance is the user's spendable credit.
func (u *User) Balance() float64 {
	return u.TopUpAmount - u.ConsumeRecords
}
