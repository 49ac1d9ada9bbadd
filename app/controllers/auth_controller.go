package controllers

import (
	"net/http"

	"quill/app/models"
	"quill/app/services"
)

// AuthController handles registration and login
type AuthController struct {
	auth *services.AuthService
}

// NewAuthController creates a new AuthController
func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Register creates an account
func (ac *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := ac.auth.Register(in)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, user)
}

// Login exchanges credentials for an access token
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	token, user, err := ac.auth.Login(in)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}
