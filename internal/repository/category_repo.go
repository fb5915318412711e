package repository

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/nalyk/shopbot/internal/models"
)

// ErrNotFound is returned when a node referenced by id does not exist.
// Callback data can carry ids that another admin already deleted, so every
// lookup by id must treat this as a recoverable condition.
var ErrNotFound = errors.New("not found")

// CategoryRepository handles the category/product tree.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// DB exposes the underlying handle for transaction composition.
func (r *CategoryRepository) DB() *gorm.DB {
	return r.db
}

// GetByID returns a node by id, ErrNotFound when it no longer exists.
func (r *CategoryRepository) GetByID(id int64) (*models.Category, error) {
	var cat models.Category
	if err := r.db.Where("id = ?", id).First(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cat, nil
}

// GetRootsFiltered returns one page of root-level nodes in the requested
// archive scope. showArchived=false lists active nodes only, true lists
// archived nodes only; the two scopes never mix.
func (r *CategoryRepository) GetRootsFiltered(page, pageSize int, showArchived bool) ([]models.Category, error) {
	var cats []models.Category
	err := r.db.Where("parent_id IS NULL AND is_active = ?", !showArchived).
		Order("is_product ASC, name ASC").
		Offset(page * pageSize).Limit(pageSize).
		Find(&cats).Error
	return cats, err
}

// GetChildrenFiltered returns one page of children of parentID in the
// requested archive scope.
func (r *CategoryRepository) GetChildrenFiltered(parentID int64, page, pageSize int, showArchived bool) ([]models.Category, error) {
	var cats []models.Category
	err := r.db.Where("parent_id = ? AND is_active = ?", parentID, !showArchived).
		Order("is_product ASC, name ASC").
		Offset(page * pageSize).Limit(pageSize).
		Find(&cats).Error
	return cats, err
}

// CountRootsFiltered counts root-level nodes in the given scope.
func (r *CategoryRepository) CountRootsFiltered(showArchived bool) (int64, error) {
	var count int64
	err := r.db.Model(&models.Category{}).
		Where("parent_id IS NULL AND is_active = ?", !showArchived).
		Count(&count).Error
	return count, err
}

// CountChildrenFiltered counts children of parentID in the given scope.
func (r *CategoryRepository) CountChildrenFiltered(parentID int64, showArchived bool) (int64, error) {
	var count int64
	err := r.db.Model(&models.Category{}).
		Where("parent_id = ? AND is_active = ?", parentID, !showArchived).
		Count(&count).Error
	return count, err
}

// CountChildren counts direct children regardless of archive state.
func (r *CategoryRepository) CountChildren(id int64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Category{}).Where("parent_id = ?", id).Count(&count).Error
	return count, err
}

// GetAvailableQty counts unsold items under a product node.
func (r *CategoryRepository) GetAvailableQty(id int64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Item{}).
		Where("category_id = ? AND is_sold = ?", id, false).
		Count(&count).Error
	return count, err
}

// subtreeIDs collects the ids of a node and all its descendants with a
// breadth-first walk. Bounded by tree size; the tree is shallow in practice.
func (r *CategoryRepository) subtreeIDs(rootID int64) ([]int64, error) {
	ids := []int64{rootID}
	frontier := []int64{rootID}
	for len(frontier) > 0 {
		var children []int64
		if err := r.db.Model(&models.Category{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		ids = append(ids, children...)
		frontier = children
	}
	return ids, nil
}

// CountSoldInSubtree counts sold-item records under the node or any of its
// descendants. The delete flow evaluates this at both the confirmation
// prompt and the execute step; it must never be cached between the two.
func (r *CategoryRepository) CountSoldInSubtree(id int64) (int64, error) {
	ids, err := r.subtreeIDs(id)
	if err != nil {
		return 0, err
	}
	var count int64
	err = r.db.Model(&models.Item{}).
		Where("category_id IN ? AND is_sold = ?", ids, true).
		Count(&count).Error
	return count, err
}

// GetBreadcrumb walks parent links from id up to the root and returns the
// chain in root-to-id order. A node disappearing mid-walk truncates the
// chain instead of failing.
func (r *CategoryRepository) GetBreadcrumb(id int64) ([]models.Category, error) {
	var chain []models.Category
	next := sql.NullInt64{Int64: id, Valid: true}
	for next.Valid {
		cat, err := r.GetByID(next.Int64)
		if errors.Is(err, ErrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		chain = append([]models.Category{*cat}, chain...)
		next = cat.ParentID
	}
	return chain, nil
}

// ExistsAtLevel reports whether a sibling with the same name already exists
// under parentID (nil parentID means root). Matching is case-sensitive.
func (r *CategoryRepository) ExistsAtLevel(name string, parentID *int64) (bool, error) {
	var count int64
	db := r.db.Model(&models.Category{}).Where("name = ?", name)
	if parentID == nil {
		db = db.Where("parent_id IS NULL")
	} else {
		db = db.Where("parent_id = ?", *parentID)
	}
	err := db.Count(&count).Error
	return count > 0, err
}

// Create inserts a new node under parentID (nil for root), active by default.
func (r *CategoryRepository) Create(name string, parentID *int64, isProduct bool, price *float64, description *string) (*models.Category, error) {
	cat := models.Category{
		Name:      name,
		IsProduct: isProduct,
		IsActive:  true,
	}
	if parentID != nil {
		cat.ParentID = sql.NullInt64{Int64: *parentID, Valid: true}
	}
	if price != nil {
		cat.Price = sql.NullFloat64{Float64: *price, Valid: true}
	}
	if description != nil {
		cat.Description = sql.NullString{String: *description, Valid: true}
	}
	if err := r.db.Create(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

// UpdatePrice sets a product's price.
func (r *CategoryRepository) UpdatePrice(id int64, price float64) error {
	return r.update(id, "price", price)
}

// UpdateDescription sets a product's description.
func (r *CategoryRepository) UpdateDescription(id int64, description string) error {
	return r.update(id, "description", description)
}

// UpdateImage sets a product's image file reference.
func (r *CategoryRepository) UpdateImage(id int64, fileID string) error {
	return r.update(id, "image_file_id", fileID)
}

// SetActive reactivates an archived node.
func (r *CategoryRepository) SetActive(id int64) error {
	return r.update(id, "is_active", true)
}

// SetInactive archives a node, hiding it from active views while keeping
// its sale history reachable.
func (r *CategoryRepository) SetInactive(id int64) error {
	return r.update(id, "is_active", false)
}

func (r *CategoryRepository) update(id int64, column string, value interface{}) error {
	res := r.db.Model(&models.Category{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByID removes a node and its entire subtree, including any unsold
// stock items beneath it, as one transaction. Callers must have verified
// that the subtree has no sold records.
func (r *CategoryRepository) DeleteByID(id int64) error {
	ids, err := r.subtreeIDs(id)
	if err != nil {
		return err
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id IN ?", ids).Delete(&models.Item{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
