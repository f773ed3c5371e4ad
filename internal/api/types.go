package api

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserSummary is the identity shape returned by register and login.
type UserSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

type IngredientRequest struct {
	Name   string  `json:"name" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Unit   string  `json:"unit" binding:"required"`
	Notes  string  `json:"notes"`
}

type RecipeRequest struct {
	Title        string              `json:"title" binding:"required"`
	Description  string              `json:"description"`
	Servings     int                 `json:"servings" binding:"required,gt=0"`
	PrepTime     int                 `json:"prepTime" binding:"gte=0"`
	CookTime     int                 `json:"cookTime" binding:"gte=0"`
	Instructions string              `json:"instructions" binding:"required"`
	Ingredients  []IngredientRequest `json:"ingredients" binding:"dive"`
	Tags         []string            `json:"tags"`
}
