package auth

import "github.com/springzlabs/springz-backend/internal/users"

// RegisterInput carries a new customer registration.
type RegisterInput struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	Name     string  `json:"name" validate:"required,min=1,max=120"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
}

// LoginInput carries credentials for customer and admin login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshInput rotates an expired access token using the refresh token.
type RefreshInput struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TokenPair is the issued credential set.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// AuthResult bundles the user profile with the issued tokens.
type AuthResult struct {
	User   *users.UserDTO `json:"user"`
	Tokens TokenPair      `json:"tokens"`
}
