package models

import "database/sql"

// Category is a node in the inventory tree. A node is either a container
// (category) or a leaf (product); products carry price/description/image,
// containers only a name. ParentID is NULL for root-level nodes.
type Category struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ParentID    sql.NullInt64   `gorm:"column:parent_id;index" json:"parent_id"`
	Name        string          `gorm:"column:name;size:500;not null" json:"name"`
	IsProduct   bool            `gorm:"column:is_product;not null;default:false" json:"is_product"`
	Price       sql.NullFloat64 `gorm:"column:price" json:"price"`
	Description sql.NullString  `gorm:"column:description;type:text" json:"description"`
	ImageFileID sql.NullString  `gorm:"column:image_file_id;size:500" json:"image_file_id"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
}

func (Category) TableName() string {
	return "categories"
}
