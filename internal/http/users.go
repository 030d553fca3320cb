package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"places-api/internal/domain"
	"places-api/internal/service"
)

type signupRequest struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Image  string  `json:"image"`
	Places []int64 `json:"places"`
}

type AuthResponse struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	c.JSON(http.StatusOK, gin.H{"users": resp})
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBind(&req); err != nil {
		h.respondError(c, service.Validation("Invalid inputs passed, please check your data.", err))
		return
	}

	result, err := h.users.Signup(c.Request.Context(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}, uploadedPath(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, authToResponse(result))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, service.Validation("Invalid inputs passed, please check your data.", err))
		return
	}

	result, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, authToResponse(result))
}

func userToResponse(user domain.User) UserResponse {
	places := user.Places
	if places == nil {
		places = []int64{}
	}
	return UserResponse{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Image:  user.ImageURL,
		Places: places,
	}
}

func authToResponse(result *service.AuthResult) AuthResponse {
	return AuthResponse{
		UserID: result.UserID,
		Email:  result.Email,
		Token:  result.Token,
	}
}
