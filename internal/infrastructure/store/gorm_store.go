package store

import (
	"context"
	"errors"
	"fmt"

	"recipe-share/internal/core/recipe"
	"recipe-share/internal/pkg/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore 以 GORM 實作 recipe.RecordStore
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 創建資料儲存
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ListRecipes 取得所有食譜並預載作者
func (s *GormStore) ListRecipes(ctx context.Context) ([]recipe.RecipeRecord, error) {
	var models []RecipeModel
	err := s.db.WithContext(ctx).
		Preload("Author").
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	records := make([]recipe.RecipeRecord, len(models))
	for i := range models {
		records[i] = recipeToRecord(&models[i])
	}
	return records, nil
}

// GetRecipe 取得單一食譜
func (s *GormStore) GetRecipe(ctx context.Context, id string) (*recipe.RecipeRecord, error) {
	var model RecipeModel
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrRecordNotFound
		}
		return nil, err
	}

	record := recipeToRecord(&model)
	return &record, nil
}

// ListIngredients 取得食譜的食材
func (s *GormStore) ListIngredients(ctx context.Context, recipeID string) ([]recipe.Ingredient, error) {
	var models []IngredientModel
	if err := s.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	items := make([]recipe.Ingredient, len(models))
	for i, m := range models {
		items[i] = recipe.Ingredient{RecipeID: m.RecipeID, Name: m.Name, Amount: m.Amount}
	}
	return items, nil
}

// ListSteps 取得食譜步驟，依 number 遞增
func (s *GormStore) ListSteps(ctx context.Context, recipeID string) ([]recipe.Step, error) {
	var models []StepModel
	if err := s.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("number ASC, id ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	steps := make([]recipe.Step, len(models))
	for i, m := range models {
		steps[i] = recipe.Step{RecipeID: m.RecipeID, Number: m.Number, Description: m.Description}
		if m.Image != nil {
			steps[i].Image = *m.Image
		}
	}
	return steps, nil
}

// EnsureAuthor 作者已存在時不做任何事
func (s *GormStore) EnsureAuthor(ctx context.Context, author recipe.AuthorRecord) error {
	model := UserModel{
		ID:          author.ID,
		Name:        author.Name,
		Avatar:      author.Avatar,
		Description: author.Description,
		Followers:   author.Followers,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(&model).Error
}

// InsertRecipe 新增食譜並回傳 ID
func (s *GormStore) InsertRecipe(ctx context.Context, row recipe.RecipeRecord) (string, error) {
	id := row.ID
	if id == "" {
		id = common.GenerateUUID()
	}

	model := RecipeModel{
		ID:          id,
		Title:       row.Title,
		CoverImage:  row.CoverImage,
		Tags:        StringSlice(row.Tags),
		CookingTime: row.CookingTime,
		Cost:        row.Cost,
		Description: row.Description,
		AuthorID:    row.AuthorID,
		Views:       row.Views,
		Likes:       row.Likes,
		Bookmarks:   row.Bookmarks,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&model).Error; err != nil {
		return "", err
	}
	return model.ID, nil
}

// InsertIngredients 批次新增食材
func (s *GormStore) InsertIngredients(ctx context.Context, recipeID string, items []recipe.Ingredient) error {
	if len(items) == 0 {
		return nil
	}

	models := make([]IngredientModel, len(items))
	for i, item := range items {
		models[i] = IngredientModel{
			RecipeID: recipeID,
			Name:     item.Name,
			Amount:   item.Amount,
		}
	}
	return s.db.WithContext(ctx).Create(&models).Error
}

// InsertSteps 批次新增步驟，number 由呼叫者指定
func (s *GormStore) InsertSteps(ctx context.Context, recipeID string, steps []recipe.Step) error {
	if len(steps) == 0 {
		return nil
	}

	models := make([]StepModel, len(steps))
	for i, step := range steps {
		models[i] = StepModel{
			RecipeID:    recipeID,
			Number:      step.Number,
			Description: step.Description,
		}
		if step.Image != "" {
			img := step.Image
			models[i].Image = &img
		}
	}
	return s.db.WithContext(ctx).Create(&models).Error
}

// Transaction 在交易中執行 fn
func (s *GormStore) Transaction(ctx context.Context, fn func(tx recipe.RecordStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// Ping 檢查資料庫連線
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
