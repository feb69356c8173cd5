package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/internal/models"
	"github.com/taskhub-dev/taskhub/internal/services"
	"github.com/taskhub-dev/taskhub/internal/utils"
)

// UserRequest is shared by create and update. Omitted fields stay as they
// are; a zero id clears a reference.
type UserRequest struct {
	Name          *string      `json:"name"`
	Email         *string      `json:"email"`
	Phone         *string      `json:"phone"`
	Password      *string      `json:"password"`
	Role          *models.Role `json:"role"`
	DepartmentID  *uint        `json:"departmentId"`
	RehberGroupID *uint        `json:"rehberGroupId"`
	RehberID      *uint        `json:"rehberId"`
}

func (r UserRequest) input() services.UserInput {
	return services.UserInput{
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		Password:      r.Password,
		Role:          r.Role,
		DepartmentID:  r.DepartmentID,
		RehberGroupID: r.RehberGroupID,
		RehberID:      r.RehberID,
	}
}

func (h *Handler) ListUsers(ctx *gin.Context) {
	users, err := h.svc.Users.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, users)
}

func (h *Handler) CreateUser(ctx *gin.Context) {
	var body UserRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	user, err := h.svc.Users.Create(ctx.Request.Context(), body.input())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

func (h *Handler) UpdateUser(ctx *gin.Context) {
	id, err := utils.QueryID(ctx, "id")
	if err != nil {
		respondError(ctx, err)
		return
	}

	var body UserRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	user, err := h.svc.Users.Update(ctx.Request.Context(), id, body.input())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, user)
}

func (h *Handler) DeleteUser(ctx *gin.Context) {
	id, err := utils.QueryID(ctx, "id")
	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := h.svc.Users.Delete(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
