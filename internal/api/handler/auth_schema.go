package handler

import "github.com/99minutos/user-admin/internal/core/domain"

type errorResponse struct {
	Error string `json:"error"`
}

type loginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}
