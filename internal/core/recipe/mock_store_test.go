package recipe

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRecordStore is a mock implementation of RecordStore
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) ListRecipes(ctx context.Context) ([]RecipeRecord, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]RecipeRecord)
	return rows, args.Error(1)
}

func (m *MockRecordStore) GetRecipe(ctx context.Context, id string) (*RecipeRecord, error) {
	args := m.Called(ctx, id)
	row, _ := args.Get(0).(*RecipeRecord)
	return row, args.Error(1)
}

func (m *MockRecordStore) ListIngredients(ctx context.Context, recipeID string) ([]Ingredient, error) {
	args := m.Called(ctx, recipeID)
	items, _ := args.Get(0).([]Ingredient)
	return items, args.Error(1)
}

func (m *MockRecordStore) ListSteps(ctx context.Context, recipeID string) ([]Step, error) {
	args := m.Called(ctx, recipeID)
	steps, _ := args.Get(0).([]Step)
	return steps, args.Error(1)
}

func (m *MockRecordStore) EnsureAuthor(ctx context.Context, author AuthorRecord) error {
	return m.Called(ctx, author).Error(0)
}

func (m *MockRecordStore) InsertRecipe(ctx context.Context, row RecipeRecord) (string, error) {
	args := m.Called(ctx, row)
	return args.String(0), args.Error(1)
}

func (m *MockRecordStore) InsertIngredients(ctx context.Context, recipeID string, items []Ingredient) error {
	return m.Called(ctx, recipeID, items).Error(0)
}

func (m *MockRecordStore) InsertSteps(ctx context.Context, recipeID string, steps []Step) error {
	return m.Called(ctx, recipeID, steps).Error(0)
}

// Transaction runs fn against the mock itself
func (m *MockRecordStore) Transaction(ctx context.Context, fn func(tx RecordStore) error) error {
	return fn(m)
}

func (m *MockRecordStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
