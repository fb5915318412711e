package models

// Item is a single sellable unit of stock under a product node.
// PrivateData is what the buyer receives after purchase.
type Item struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CategoryID  int64  `gorm:"column:category_id;index;not null" json:"category_id"`
	PrivateData string `gorm:"column:private_data;type:text" json:"private_data"`
	IsSold      bool   `gorm:"column:is_sold;not null;default:false" json:"is_sold"`
	IsNew       bool   `gorm:"column:is_new;not null;default:true" json:"is_new"`
}

func (Item) TableName() string {
	return "items"
}
