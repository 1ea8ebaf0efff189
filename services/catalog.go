package services

import (
	"context"
	"strings"

	"restaurant-pos-api/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CategoryPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type MenuItemInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Image       string  `json:"image"`
	Category    uint    `json:"category" binding:"required"`
	IsAvailable *bool   `json:"isAvailable"`
}

type MenuItemPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Image       *string  `json:"image"`
	Category    *uint    `json:"category"`
	IsAvailable *bool    `json:"isAvailable"`
}

// CatalogService manages categories and menu items
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := s.db.WithContext(ctx).Order("name").Find(&categories).Error
	return categories, errors.Wrap(err, "list categories")
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationf("Please add a category name")
	}
	if err := s.ensureCategoryNameFree(ctx, name, 0); err != nil {
		return nil, err
	}
	category := models.Category{Name: name, Description: in.Description}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, errors.Wrap(err, "create category")
	}
	return &category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, in CategoryPatch) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, errors.Wrap(err, "load category")
	}

	changes := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, validationf("Please add a category name")
		}
		if err := s.ensureCategoryNameFree(ctx, name, id); err != nil {
			return nil, err
		}
		changes["name"] = name
	}
	if in.Description != nil {
		changes["description"] = *in.Description
	}
	if len(changes) > 0 {
		if err := s.db.WithContext(ctx).Model(&category).Updates(changes).Error; err != nil {
			return nil, errors.Wrap(err, "update category")
		}
		if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
			return nil, errors.Wrap(err, "reload category")
		}
	}
	return &category, nil
}

// DeleteCategory removes the category only; its menu items keep the stale id
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete category")
	}
	if res.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *CatalogService) ensureCategoryNameFree(ctx context.Context, name string, except uint) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, except).
		Count(&count).Error
	if err != nil {
		return errors.Wrap(err, "check category name")
	}
	if count > 0 {
		return ErrCategoryExists
	}
	return nil
}

// ListMenuItems returns menu items with their category, optionally for one category
func (s *CatalogService) ListMenuItems(ctx context.Context, categoryID uint) ([]models.MenuItem, error) {
	q := s.db.WithContext(ctx).Preload("Category")
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	items := []models.MenuItem{}
	err := q.Order("id").Find(&items).Error
	return items, errors.Wrap(err, "list menu items")
}

func (s *CatalogService) CreateMenuItem(ctx context.Context, in MenuItemInput) (*models.MenuItem, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationf("Please add a menu item name")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, validationf("Please add a description")
	}
	if in.Price <= 0 {
		return nil, validationf("Price must be greater than zero")
	}
	if in.Category == 0 {
		return nil, validationf("Please choose a category")
	}
	image := in.Image
	if image == "" {
		image = models.DefaultMenuImage
	}
	available := true
	if in.IsAvailable != nil {
		available = *in.IsAvailable
	}

	item := models.MenuItem{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Image:       image,
		CategoryID:  in.Category,
		IsAvailable: available,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, errors.Wrap(err, "create menu item")
	}
	return s.loadMenuItem(ctx, item.ID)
}

func (s *CatalogService) UpdateMenuItem(ctx context.Context, id uint, in MenuItemPatch) (*models.MenuItem, error) {
	item, err := s.loadMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, validationf("Please add a menu item name")
		}
		changes["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		if strings.TrimSpace(*in.Description) == "" {
			return nil, validationf("Please add a description")
		}
		changes["description"] = *in.Description
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			return nil, validationf("Price must be greater than zero")
		}
		changes["price"] = *in.Price
	}
	if in.Image != nil {
		changes["image"] = *in.Image
	}
	if in.Category != nil {
		if *in.Category == 0 {
			return nil, validationf("Please choose a category")
		}
		changes["category_id"] = *in.Category
	}
	if in.IsAvailable != nil {
		changes["is_available"] = *in.IsAvailable
	}

	if len(changes) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.MenuItem{ID: item.ID}).Updates(changes).Error; err != nil {
			return nil, errors.Wrap(err, "update menu item")
		}
	}
	return s.loadMenuItem(ctx, id)
}

func (s *CatalogService) DeleteMenuItem(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.MenuItem{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete menu item")
	}
	if res.RowsAffected == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}

// GroupByCategory buckets items by category name; items whose category is
// gone land under models.UncategorizedLabel.
func GroupByCategory(items []models.MenuItem) map[string][]models.MenuItem {
	groups := map[string][]models.MenuItem{}
	for _, it := range items {
		name := it.CategoryName()
		groups[name] = append(groups[name], it)
	}
	return groups
}

func (s *CatalogService) loadMenuItem(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.WithContext(ctx).Preload("Category").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, errors.Wrap(err, "load menu item")
	}
	return &item, nil
}
