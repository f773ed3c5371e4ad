package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Recipe struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Servings     int       `gorm:"not null" json:"servings"`
	PrepTime     int       `json:"prepTime"`
	CookTime     int       `json:"cookTime"`
	Instructions string    `gorm:"type:text;not null" json:"instructions"`

	Ingredients []Ingredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients"`

	// Resolved tag names, populated by the service layer.
	Tags []string `gorm:"-" json:"tags"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type Ingredient struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecipeID uuid.UUID `gorm:"type:uuid;not null;index" json:"recipeId"`
	Name     string    `gorm:"size:255;not null" json:"name"`
	Amount   float64   `gorm:"not null" json:"amount"`
	Unit     string    `gorm:"size:50;not null" json:"unit"`
	Notes    string    `gorm:"type:text" json:"notes,omitempty"`
	// Position preserves the submitted order across database drivers.
	Position int `gorm:"not null" json:"-"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
