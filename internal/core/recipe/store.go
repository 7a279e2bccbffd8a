package recipe

import (
	"context"
	"errors"
)

// ErrRecordNotFound 查無資料
var ErrRecordNotFound = errors.New("record not found")

// RecordStore 食譜資料儲存介面
type RecordStore interface {
	// ListRecipes 取得所有食譜（含作者）
	ListRecipes(ctx context.Context) ([]RecipeRecord, error)

	// GetRecipe 取得單一食譜；不存在時回傳 ErrRecordNotFound
	GetRecipe(ctx context.Context, id string) (*RecipeRecord, error)

	ListIngredients(ctx context.Context, recipeID string) ([]Ingredient, error)

	// ListSteps 依 number 遞增排序
	ListSteps(ctx context.Context, recipeID string) ([]Step, error)

	// EnsureAuthor 作者不存在時才新增
	EnsureAuthor(ctx context.Context, author AuthorRecord) error

	// InsertRecipe 新增食譜並回傳產生的 ID
	InsertRecipe(ctx context.Context, row RecipeRecord) (string, error)

	InsertIngredients(ctx context.Context, recipeID string, items []Ingredient) error

	InsertSteps(ctx context.Context, recipeID string, steps []Step) error

	// Transaction 在同一個交易中執行 fn，fn 回傳錯誤時回滾
	Transaction(ctx context.Context, fn func(tx RecordStore) error) error

	Ping(ctx context.Context) error
}
