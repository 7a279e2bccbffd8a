package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"recipe-share/internal/core/recipe"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormStoreTestSuite struct {
	suite.Suite
	db    *gorm.DB
	store *GormStore
	ctx   context.Context
}

func (s *GormStoreTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)

	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	s.Require().NoError(db.AutoMigrate(AllModels()...))

	s.db = db
	s.store = NewGormStore(db)
	s.ctx = context.Background()
}

func (s *GormStoreTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	s.NoError(sqlDB.Close())
}

func (s *GormStoreTestSuite) TestInsertAndReadBack() {
	desc := "home cook"
	followers := int64(12)
	s.Require().NoError(s.store.EnsureAuthor(s.ctx, recipe.AuthorRecord{
		ID:          "author-1",
		Name:        "Li",
		Avatar:      "a.png",
		Description: &desc,
		Followers:   &followers,
	}))

	id, err := s.store.InsertRecipe(s.ctx, recipe.RecipeRecord{
		Title:       "Tomato Egg",
		Tags:        []string{"家常菜", "快手"},
		CookingTime: "15分钟",
		AuthorID:    "author-1",
	})
	s.Require().NoError(err)
	s.NotEmpty(id)

	s.Require().NoError(s.store.InsertIngredients(s.ctx, id, []recipe.Ingredient{
		{Name: "Egg", Amount: "2"},
		{Name: "Tomato", Amount: "1"},
	}))
	s.Require().NoError(s.store.InsertSteps(s.ctx, id, []recipe.Step{
		{Number: 2, Description: "Fry"},
		{Number: 1, Description: "Chop", Image: "chop.png"},
	}))

	row, err := s.store.GetRecipe(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("Tomato Egg", row.Title)
	s.Equal([]string{"家常菜", "快手"}, row.Tags)
	s.Require().NotNil(row.Author)
	s.Equal("Li", row.Author.Name)
	s.Require().NotNil(row.Author.Followers)
	s.Equal(int64(12), *row.Author.Followers)

	ingredients, err := s.store.ListIngredients(s.ctx, id)
	s.Require().NoError(err)
	s.Equal([]recipe.Ingredient{
		{RecipeID: id, Name: "Egg", Amount: "2"},
		{RecipeID: id, Name: "Tomato", Amount: "1"},
	}, ingredients)

	steps, err := s.store.ListSteps(s.ctx, id)
	s.Require().NoError(err)
	s.Equal([]recipe.Step{
		{RecipeID: id, Number: 1, Description: "Chop", Image: "chop.png"},
		{RecipeID: id, Number: 2, Description: "Fry"},
	}, steps)
}

func (s *GormStoreTestSuite) TestGetRecipeNotFound() {
	row, err := s.store.GetRecipe(s.ctx, "missing")
	s.Nil(row)
	s.True(errors.Is(err, recipe.ErrRecordNotFound))
}

func (s *GormStoreTestSuite) TestMissingAuthorLeavesAuthorNil() {
	// SQLite 預設不檢查外鍵
	id, err := s.store.InsertRecipe(s.ctx, recipe.RecipeRecord{Title: "Orphan", AuthorID: "ghost"})
	s.Require().NoError(err)

	row, err := s.store.GetRecipe(s.ctx, id)
	s.Require().NoError(err)
	s.Nil(row.Author)
	s.Empty(row.Tags)
}

func (s *GormStoreTestSuite) TestListRecipesOrderedByCreation() {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"c", "a", "b"} {
		s.Require().NoError(s.db.Create(&RecipeModel{
			ID:        id,
			Title:     "recipe " + id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	rows, err := s.store.ListRecipes(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rows, 3)
	s.Equal("c", rows[0].ID)
	s.Equal("a", rows[1].ID)
	s.Equal("b", rows[2].ID)
}

func (s *GormStoreTestSuite) TestEnsureAuthorIsIdempotent() {
	anon := recipe.AnonymousAuthor()
	s.Require().NoError(s.store.EnsureAuthor(s.ctx, anon))
	s.Require().NoError(s.store.EnsureAuthor(s.ctx, anon))

	var count int64
	s.Require().NoError(s.db.Model(&UserModel{}).Where("id = ?", anon.ID).Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *GormStoreTestSuite) TestTransactionRollsBack() {
	boom := errors.New("step insert failed")

	err := s.store.Transaction(s.ctx, func(tx recipe.RecordStore) error {
		if err := tx.EnsureAuthor(s.ctx, recipe.AnonymousAuthor()); err != nil {
			return err
		}
		if _, err := tx.InsertRecipe(s.ctx, recipe.RecipeRecord{Title: "Doomed", AuthorID: recipe.AnonymousAuthorID}); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	rows, err := s.store.ListRecipes(s.ctx)
	s.Require().NoError(err)
	s.Empty(rows)

	var users int64
	s.Require().NoError(s.db.Model(&UserModel{}).Count(&users).Error)
	s.Zero(users)
}

func (s *GormStoreTestSuite) TestEmptyBatchesAreNoops() {
	s.NoError(s.store.InsertIngredients(s.ctx, "r1", nil))
	s.NoError(s.store.InsertSteps(s.ctx, "r1", []recipe.Step{}))
}

func (s *GormStoreTestSuite) TestPing() {
	s.NoError(s.store.Ping(s.ctx))
}

func TestGormStoreTestSuite(t *testing.T) {
	suite.Run(t, new(GormStoreTestSuite))
}
