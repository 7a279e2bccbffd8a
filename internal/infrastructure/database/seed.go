package database

import (
	"fmt"

	"recipe-share/internal/infrastructure/store"

	"gorm.io/gorm"
)

const demoAuthorID = "11111111-1111-1111-1111-111111111111"

// Seed 資料庫為空時寫入一筆示範食譜
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&store.RecipeModel{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	desc := "在海外也能吃到家的味道"
	followers := int64(128)
	views := int64(1024)
	likes := int64(88)
	bookmarks := int64(21)

	return db.Transaction(func(tx *gorm.DB) error {
		author := store.UserModel{
			ID:          demoAuthorID,
			Name:        "留学生小厨",
			Avatar:      "https://picsum.photos/100/100?random=1",
			Description: &desc,
			Followers:   &followers,
		}
		if err := tx.Create(&author).Error; err != nil {
			return fmt.Errorf("seed author: %w", err)
		}

		recipe := store.RecipeModel{
			ID:          "22222222-2222-2222-2222-222222222222",
			Title:       "番茄炒蛋",
			CoverImage:  "https://picsum.photos/400/300?random=2",
			Tags:        store.StringSlice{"家常菜", "快手"},
			CookingTime: "15分钟",
			Cost:        "¥10",
			Description: "最简单的下饭菜",
			AuthorID:    author.ID,
			Views:       &views,
			Likes:       &likes,
			Bookmarks:   &bookmarks,
			Ingredients: []store.IngredientModel{
				{Name: "鸡蛋", Amount: "3个"},
				{Name: "番茄", Amount: "2个"},
			},
			Steps: []store.StepModel{
				{Number: 1, Description: "鸡蛋打散，番茄切块"},
				{Number: 2, Description: "先炒蛋盛出，再炒番茄"},
				{Number: 3, Description: "倒回鸡蛋翻炒，加盐调味"},
			},
		}
		if err := tx.Create(&recipe).Error; err != nil {
			return fmt.Errorf("seed recipe: %w", err)
		}
		return nil
	})
}
