package models

import "github.com/google/uuid"

// RegisterRequest DTO for user registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// RegisterResponse carries the id of the newly created user.
type RegisterResponse struct {
	UserID uuid.UUID `json:"user_id"`
}

// LoginRequest DTO for user login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenPair is the result of a successful login or refresh. Values are
// handed to the transport layer to be set as cookies, not returned in the
// response body.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
