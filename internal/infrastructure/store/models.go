package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"recipe-share/internal/core/recipe"
)

// UserModel 作者資料表
type UserModel struct {
	ID          string  `gorm:"type:varchar(36);primaryKey"`
	Name        string  `gorm:"type:varchar(255);not null"`
	Avatar      string  `gorm:"type:text"`
	Description *string `gorm:"type:text"`
	Followers   *int64  `gorm:"default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName 指定表名
func (UserModel) TableName() string { return "users" }

// RecipeModel 食譜資料表
type RecipeModel struct {
	ID          string      `gorm:"type:varchar(36);primaryKey"`
	Title       string      `gorm:"type:varchar(255);not null"`
	CoverImage  string      `gorm:"column:cover_image;type:text"`
	Tags        StringSlice `gorm:"type:json"`
	CookingTime string      `gorm:"column:cooking_time;type:varchar(100)"`
	Cost        string      `gorm:"type:varchar(100)"`
	Description string      `gorm:"type:text"`
	AuthorID    string      `gorm:"column:author_id;type:varchar(36);index"`
	Views       *int64      `gorm:"default:0"`
	Likes       *int64      `gorm:"default:0"`
	Bookmarks   *int64      `gorm:"default:0"`
	CreatedAt   time.Time   `gorm:"index"`
	UpdatedAt   time.Time

	Author      *UserModel        `gorm:"foreignKey:AuthorID"`
	Ingredients []IngredientModel `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Steps       []StepModel       `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

// TableName 指定表名
func (RecipeModel) TableName() string { return "recipes" }

// IngredientModel 食材資料表
type IngredientModel struct {
	ID       uint   `gorm:"primaryKey"`
	RecipeID string `gorm:"column:recipe_id;type:varchar(36);not null;index"`
	Name     string `gorm:"type:varchar(255)"`
	Amount   string `gorm:"type:varchar(255)"`
}

// TableName 指定表名
func (IngredientModel) TableName() string { return "ingredients" }

// StepModel 步驟資料表
type StepModel struct {
	ID          uint    `gorm:"primaryKey"`
	RecipeID    string  `gorm:"column:recipe_id;type:varchar(36);not null;index:idx_steps_recipe_number"`
	Number      int     `gorm:"not null;index:idx_steps_recipe_number"`
	Description string  `gorm:"type:text"`
	Image       *string `gorm:"type:text"`
}

// TableName 指定表名
func (StepModel) TableName() string { return "steps" }

// AllModels AutoMigrate 使用的模型清單
func AllModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&RecipeModel{},
		&IngredientModel{},
		&StepModel{},
	}
}

// StringSlice 以 JSON 儲存的字串陣列
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func userToRecord(m *UserModel) *recipe.AuthorRecord {
	if m == nil {
		return nil
	}
	return &recipe.AuthorRecord{
		ID:          m.ID,
		Name:        m.Name,
		Avatar:      m.Avatar,
		Description: m.Description,
		Followers:   m.Followers,
	}
}

func recipeToRecord(m *RecipeModel) recipe.RecipeRecord {
	return recipe.RecipeRecord{
		ID:          m.ID,
		Title:       m.Title,
		CoverImage:  m.CoverImage,
		Tags:        []string(m.Tags),
		CookingTime: m.CookingTime,
		Cost:        m.Cost,
		Description: m.Description,
		AuthorID:    m.AuthorID,
		Views:       m.Views,
		Likes:       m.Likes,
		Bookmarks:   m.Bookmarks,
		Author:      userToRecord(m.Author),
	}
}
