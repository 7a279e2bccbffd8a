package recipe

import (
	"sort"
	"strconv"
)

const (
	FallbackAuthorName = "未知作者"
	DefaultAvatar      = "https://picsum.photos/100/100?random=0"

	AnonymousAuthorID   = "00000000-0000-0000-0000-000000000000"
	AnonymousAuthorName = "匿名用户 (Anonymous)"

	CreatedMessage = "Recipe created successfully"
)

// FallbackAuthor 作者資料缺失時使用
func FallbackAuthor() AuthorView {
	return AuthorView{
		Name:      FallbackAuthorName,
		Avatar:    DefaultAvatar,
		Followers: "0",
	}
}

// AnonymousAuthor 未指定作者時使用的佔位作者
func AnonymousAuthor() AuthorRecord {
	return AuthorRecord{
		ID:     AnonymousAuthorID,
		Name:   AnonymousAuthorName,
		Avatar: DefaultAvatar,
	}
}

// Fold 將食譜、食材與步驟組合成視圖，不修改輸入
func Fold(row RecipeRecord, ingredients []Ingredient, steps []Step) Recipe {
	view := Recipe{
		ID:          row.ID,
		Title:       row.Title,
		CoverImage:  row.CoverImage,
		Author:      foldAuthor(row.Author),
		CookingTime: row.CookingTime,
		Cost:        row.Cost,
		Description: row.Description,
		Stats: Stats{
			Views:     intString(row.Views),
			Likes:     intOrZero(row.Likes),
			Bookmarks: intOrZero(row.Bookmarks),
		},
		Tags:        []string{},
		Ingredients: []Ingredient{},
		Steps:       []Step{},
	}

	if row.Tags != nil {
		view.Tags = append(view.Tags, row.Tags...)
	}
	if ingredients != nil {
		view.Ingredients = append(view.Ingredients, ingredients...)
	}
	if steps != nil {
		view.Steps = append(view.Steps, steps...)
		sort.SliceStable(view.Steps, func(i, j int) bool {
			return view.Steps[i].Number < view.Steps[j].Number
		})
	}

	return view
}

func foldAuthor(a *AuthorRecord) AuthorView {
	if a == nil {
		return FallbackAuthor()
	}
	view := AuthorView{
		Name:      a.Name,
		Avatar:    a.Avatar,
		Followers: intString(a.Followers),
	}
	if a.Description != nil {
		view.Description = *a.Description
	}
	return view
}

func intString(v *int64) string {
	if v == nil {
		return "0"
	}
	return strconv.FormatInt(*v, 10)
}

func intOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
