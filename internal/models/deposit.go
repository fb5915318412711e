package models

import "time"

// Deposit records an incoming crypto top-up. Amount is stored in the
// network's base unit (satoshi, lamport, wei...).
type Deposit struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"column:user_id;index;not null" json:"user_id"`
	Network     string    `gorm:"column:network;size:20;not null" json:"network"`
	Amount      int64     `gorm:"column:amount;not null" json:"amount"`
	TxID        string    `gorm:"column:tx_id;size:200" json:"tx_id"`
	DepositTime time.Time `gorm:"column:deposit_time;autoCreateTime" json:"deposit_time"`
}

func (Deposit) TableName() string {
	return "deposits"
}
