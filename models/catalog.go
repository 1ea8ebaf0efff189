package models

import "time"

// UncategorizedLabel is shown for menu items whose category no longer exists
const UncategorizedLabel = "Uncategorized"

// DefaultMenuImage is stored when a menu item is created without an image
const DefaultMenuImage = "no-photo.jpg"

type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MenuItem references its category by id only. Deleting the category leaves
// CategoryID dangling and Category nil after preload.
type MenuItem struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description" gorm:"not null"`
	Price       float64   `json:"price" gorm:"not null"`
	Image       string    `json:"image"`
	CategoryID  uint      `json:"categoryId" gorm:"index;not null"`
	Category    *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	IsAvailable bool      `json:"isAvailable" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CategoryName returns the loaded category name or UncategorizedLabel
func (m MenuItem) CategoryName() string {
	if m.Category == nil || m.Category.ID == 0 {
		return UncategorizedLabel
	}
	return m.Category.Name
}
