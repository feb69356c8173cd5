package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/internal/services"
	"github.com/taskhub-dev/taskhub/internal/utils"
)

type CreateSprintRequest struct {
	ProjectID uint   `json:"projectId"`
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	IsActive  *bool  `json:"isActive"`
}

type UpdateSprintRequest struct {
	Name      *string `json:"name"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	IsActive  *bool   `json:"isActive"`
}

func (h *Handler) CreateSprint(ctx *gin.Context) {
	var body CreateSprintRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	start, err := parseDate("startDate", body.StartDate)
	if err != nil {
		respondError(ctx, err)
		return
	}
	end, err := parseDate("endDate", body.EndDate)
	if err != nil {
		respondError(ctx, err)
		return
	}

	sprint, err := h.svc.Sprints.Create(ctx.Request.Context(), services.CreateSprintInput{
		ProjectID: body.ProjectID,
		Name:      body.Name,
		StartDate: start,
		EndDate:   end,
		IsActive:  body.IsActive,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, sprint)
}

func (h *Handler) ListSprints(ctx *gin.Context) {
	projectID, err := utils.OptionalQueryID(ctx, "projectId")
	if err != nil {
		respondError(ctx, err)
		return
	}

	sprints, err := h.svc.Sprints.List(ctx.Request.Context(), projectID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, sprints)
}

func (h *Handler) UpdateSprint(ctx *gin.Context) {
	id, err := utils.QueryID(ctx, "id")
	if err != nil {
		respondError(ctx, err)
		return
	}

	var body UpdateSprintRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	start, err := parseDate("startDate", body.StartDate)
	if err != nil {
		respondError(ctx, err)
		return
	}
	end, err := parseDate("endDate", body.EndDate)
	if err != nil {
		respondError(ctx, err)
		return
	}

	sprint, err := h.svc.Sprints.Update(ctx.Request.Context(), id, services.UpdateSprintInput{
		Name:      body.Name,
		StartDate: start,
		EndDate:   end,
		IsActive:  body.IsActive,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, sprint)
}

// DeleteSprint answers a warning until the request carries force=true,
// unless the sprint has no issues.
func (h *Handler) DeleteSprint(ctx *gin.Context) {
	id, err := utils.QueryID(ctx, "id")
	if err != nil {
		respondError(ctx, err)
		return
	}

	outcome, err := h.svc.Sprints.Delete(ctx.Request.Context(), id, utils.QueryBool(ctx, "force"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, outcome)
}
