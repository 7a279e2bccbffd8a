package recipe

import (
	"context"
	"errors"
	"strings"

	"recipe-share/internal/pkg/common"

	"go.uber.org/zap"
)

// Writer 負責建立食譜及其關聯資料
type Writer struct {
	store RecordStore
}

// NewWriter 創建食譜寫入服務
func NewWriter(store RecordStore) *Writer {
	return &Writer{store: store}
}

// Create 在同一個交易中寫入作者、食譜、食材與步驟
func (w *Writer) Create(ctx context.Context, req *CreateRequest) (*CreateResult, error) {
	if w.store == nil {
		return nil, common.ErrServiceUnavailable
	}
	if req == nil || strings.TrimSpace(req.Title) == "" {
		return nil, common.NewValidationError("Title is required")
	}

	var recipeID string
	err := w.store.Transaction(ctx, func(tx RecordStore) error {
		authorID := req.AuthorID
		if authorID == "" {
			anon := AnonymousAuthor()
			if err := tx.EnsureAuthor(ctx, anon); err != nil {
				return common.NewAuthorCreationError(err)
			}
			authorID = anon.ID
		}

		id, err := tx.InsertRecipe(ctx, RecipeRecord{
			Title:       req.Title,
			Description: req.Description,
			CoverImage:  req.CoverImage,
			Tags:        req.Tags,
			CookingTime: req.CookingTime,
			Cost:        req.Cost,
			AuthorID:    authorID,
		})
		if err != nil {
			return common.NewRecipeInsertError(err)
		}

		if len(req.Ingredients) > 0 {
			items := make([]Ingredient, len(req.Ingredients))
			for i, item := range req.Ingredients {
				items[i] = Ingredient{RecipeID: id, Name: item.Name, Amount: item.Amount}
			}
			if err := tx.InsertIngredients(ctx, id, items); err != nil {
				return common.NewIngredientInsertError(err)
			}
		}

		if len(req.Steps) > 0 {
			steps := make([]Step, len(req.Steps))
			for i, s := range req.Steps {
				steps[i] = Step{
					RecipeID:    id,
					Number:      i + 1,
					Description: s.Description,
					Image:       s.Image,
				}
			}
			if err := tx.InsertSteps(ctx, id, steps); err != nil {
				return common.NewStepInsertError(err)
			}
		}

		recipeID = id
		return nil
	})
	if err != nil {
		common.LogError("建立食譜失敗", zap.String("title", req.Title), zap.Error(err))
		var ce *common.CustomError
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, common.NewRecipeInsertError(err)
	}

	common.LogInfo("食譜建立成功", zap.String("recipe_id", recipeID))
	return &CreateResult{
		Message:  CreatedMessage,
		RecipeID: recipeID,
	}, nil
}
