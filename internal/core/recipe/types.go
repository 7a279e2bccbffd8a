package recipe

// AuthorRecord 資料庫中的作者資料
type AuthorRecord struct {
	ID          string
	Name        string
	Avatar      string
	Description *string
	Followers   *int64
}

// RecipeRecord 資料庫中的食譜資料，Author 為 nil 表示作者不存在
type RecipeRecord struct {
	ID          string
	Title       string
	CoverImage  string
	Tags        []string
	CookingTime string
	Cost        string
	Description string
	AuthorID    string
	Views       *int64
	Likes       *int64
	Bookmarks   *int64
	Author      *AuthorRecord
}

// Ingredient 食材；RecipeID 於讀取時由資料庫帶出，建立時忽略
type Ingredient struct {
	RecipeID string `json:"recipeId,omitempty"`
	Name     string `json:"name"`
	Amount   string `json:"amount"`
}

// Step 食譜步驟
type Step struct {
	RecipeID    string `json:"recipeId,omitempty"`
	Number      int    `json:"number"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
}

// AuthorView 回傳給前端的作者資訊
type AuthorView struct {
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	Description string `json:"description"`
	Followers   string `json:"followers"`
}

// Stats 食譜統計
type Stats struct {
	Views     string `json:"views"`
	Likes     int64  `json:"likes"`
	Bookmarks int64  `json:"bookmarks"`
}

// Recipe 組合後的食譜視圖
type Recipe struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	CoverImage  string       `json:"coverImage"`
	Author      AuthorView   `json:"author"`
	Stats       Stats        `json:"stats"`
	Tags        []string     `json:"tags"`
	CookingTime string       `json:"cookingTime"`
	Cost        string       `json:"cost"`
	Description string       `json:"description"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []Step       `json:"steps"`
}

// StepInput 建立食譜時的步驟輸入
type StepInput struct {
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
}

// CreateRequest 建立食譜請求
type CreateRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	CoverImage  string       `json:"coverImage"`
	Tags        []string     `json:"tags"`
	CookingTime string       `json:"cookingTime"`
	Cost        string       `json:"cost"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []StepInput  `json:"steps"`
	AuthorID    string       `json:"authorId,omitempty"`
}

// CreateResult 建立食譜結果
type CreateResult struct {
	Message  string `json:"message"`
	RecipeID string `json:"recipeId"`
}

// IdeaStep AI 生成的步驟
type IdeaStep struct {
	Description string `json:"description"`
}

// Idea AI 生成的食譜靈感
type Idea struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []IdeaStep   `json:"steps"`
}
