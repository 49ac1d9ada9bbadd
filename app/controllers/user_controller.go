package controllers

import (
	"net/http"

	"quill/app/middleware"
	"quill/app/services"
)

// UserController serves account and admin views
type UserController struct {
	users *services.UserService
}

// NewUserController creates a new UserController
func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// Index lists all users
func (uc *UserController) Index(w http.ResponseWriter, r *http.Request) {
	users, err := uc.users.ListUsers(middleware.PrincipalFrom(r.Context()))
	if err != nil {
		sendServiceError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, users)
}

// Me returns the caller's account
func (uc *UserController) Me(w http.ResponseWriter, r *http.Request) {
	user, err := uc.users.Me(middleware.PrincipalFrom(r.Context()))
	if err != nil {
		sendServiceError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, user)
}

// Stats returns content totals
func (uc *UserController) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := uc.users.Stats(middleware.PrincipalFrom(r.Context()))
	if err != nil {
		sendServiceError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, stats)
}
