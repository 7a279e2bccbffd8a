package recipe

import (
	"context"
	"errors"

	"recipe-share/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultFetchConcurrency = 8

// Aggregator 從多張資料表組合食譜視圖
type Aggregator struct {
	store       RecordStore
	concurrency int
}

// NewAggregator 創建食譜聚合服務；store 可為 nil，此時所有查詢回傳 503
func NewAggregator(store RecordStore, concurrency int) *Aggregator {
	if concurrency <= 0 {
		concurrency = defaultFetchConcurrency
	}
	return &Aggregator{
		store:       store,
		concurrency: concurrency,
	}
}

// List 取得所有食譜，順序與資料庫一致
func (a *Aggregator) List(ctx context.Context) ([]Recipe, error) {
	if a.store == nil {
		return nil, common.ErrServiceUnavailable
	}

	rows, err := a.store.ListRecipes(ctx)
	if err != nil {
		common.LogError("讀取食譜列表失敗", zap.Error(err))
		return nil, common.NewDataFetchError(err)
	}

	results := make([]Recipe, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i := range rows {
		i := i
		g.Go(func() error {
			ingredients, steps, err := a.fetchChildren(gctx, rows[i].ID)
			if err != nil {
				return err
			}
			results[i] = Fold(rows[i], ingredients, steps)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		common.LogError("讀取食譜明細失敗", zap.Error(err))
		return nil, common.NewDataFetchError(err)
	}

	common.LogDebug("食譜列表組合完成", zap.Int("count", len(results)))
	return results, nil
}

// GetByID 取得單一食譜
func (a *Aggregator) GetByID(ctx context.Context, id string) (*Recipe, error) {
	if a.store == nil {
		return nil, common.ErrServiceUnavailable
	}

	row, err := a.store.GetRecipe(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		common.LogError("讀取食譜失敗", zap.String("recipe_id", id), zap.Error(err))
		return nil, common.NewDataFetchError(err)
	}
	if row == nil {
		return nil, common.ErrNotFound
	}

	ingredients, steps, err := a.fetchChildren(ctx, row.ID)
	if err != nil {
		common.LogError("讀取食譜明細失敗", zap.String("recipe_id", id), zap.Error(err))
		return nil, common.NewDataFetchError(err)
	}

	view := Fold(*row, ingredients, steps)
	return &view, nil
}

// fetchChildren 同時讀取食材與步驟
func (a *Aggregator) fetchChildren(ctx context.Context, recipeID string) ([]Ingredient, []Step, error) {
	var (
		ingredients []Ingredient
		steps       []Step
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ingredients, err = a.store.ListIngredients(gctx, recipeID)
		return err
	})
	g.Go(func() error {
		var err error
		steps, err = a.store.ListSteps(gctx, recipeID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return ingredients, steps, nil
}
