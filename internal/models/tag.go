package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag names are global and shared across users. They are normalized to
// lowercase before storage and are never deleted by recipe operations, so a
// tag may outlive the last recipe that referenced it.
type Tag struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// RecipeTag joins recipes to tags. Rows are rewritten wholesale whenever a
// recipe is created or updated.
type RecipeTag struct {
	RecipeID uuid.UUID `gorm:"type:uuid;primaryKey" json:"recipeId"`
	TagID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"tagId"`

	Recipe Recipe `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Tag    Tag    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (RecipeTag) TableName() string {
	return "recipe_tags"
}
