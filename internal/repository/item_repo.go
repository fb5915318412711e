package repository

import (
	"gorm.io/gorm"

	"github.com/nalyk/shopbot/internal/models"
)

// ItemRepository handles stock items under product nodes.
type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// AddMany appends stock items to a product inside one transaction and
// returns the number inserted.
func (r *ItemRepository) AddMany(categoryID int64, privateData []string) (int, error) {
	if len(privateData) == 0 {
		return 0, nil
	}
	items := make([]models.Item, 0, len(privateData))
	for _, data := range privateData {
		items = append(items, models.Item{
			CategoryID:  categoryID,
			PrivateData: data,
			IsNew:       true,
		})
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&items).Error
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// NewStock summarizes unsold items still flagged new, per product name.
// Used by the restocking announcement.
func (r *ItemRepository) NewStock() (map[string]int64, error) {
	type row struct {
		Name  string
		Count int64
	}
	var rows []row
	err := r.db.Model(&models.Item{}).
		Select("categories.name AS name, COUNT(items.id) AS count").
		Joins("JOIN categories ON categories.id = items.category_id").
		Where("items.is_new = ? AND items.is_sold = ?", true, false).
		Group("categories.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	stock := make(map[string]int64, len(rows))
	for _, r := range rows {
		stock[r.Name] = r.Count
	}
	return stock, nil
}

// CurrentStock summarizes all unsold items per active product name.
func (r *ItemRepository) CurrentStock() (map[string]int64, error) {
	type row struct {
		Name  string
		Count int64
	}
	var rows []row
	err := r.db.Model(&models.Item{}).
		Select("categories.name AS name, COUNT(items.id) AS count").
		Joins("JOIN categories ON categories.id = items.category_id").
		Where("items.is_sold = ? AND categories.is_active = ?", false, true).
		Group("categories.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	stock := make(map[string]int64, len(rows))
	for _, r := range rows {
		stock[r.Name] = r.Count
	}
	return stock, nil
}

// SetNotNew clears the new flag on every item, run after a restocking
// announcement has gone out.
func (r *ItemRepository) SetNotNew() error {
	return r.db.Model(&models.Item{}).Where("is_new = ?", true).Update("is_new", false).Error
}
