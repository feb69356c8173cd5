package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/internal/services"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (h *Handler) Register(ctx *gin.Context) {
	var body RegisterRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	user, err := h.svc.Users.Register(ctx.Request.Context(), services.RegisterInput{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(ctx *gin.Context) {
	var body LoginRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	result, err := h.svc.Users.Login(ctx.Request.Context(), body.Email, body.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

func (h *Handler) Profile(ctx *gin.Context) {
	caller, ok := currentUser(ctx)
	if !ok {
		return
	}

	user, err := h.svc.Users.Get(ctx.Request.Context(), caller.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateProfile(ctx *gin.Context) {
	caller, ok := currentUser(ctx)
	if !ok {
		return
	}

	var body UpdateProfileRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	user, err := h.svc.Users.UpdateProfile(ctx.Request.Context(), caller, services.ProfileInput{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, user)
}
