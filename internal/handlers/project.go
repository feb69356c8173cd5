package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/internal/services"
	"github.com/taskhub-dev/taskhub/internal/utils"
)

type ProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Key         string `json:"key" binding:"required"`
	Description string `json:"description"`

	DiscordWebhook string `json:"discordWebhook"`
	SlackWebhook   string `json:"slackWebhook"`
}

func (h *Handler) CreateProject(ctx *gin.Context) {
	caller, ok := currentUser(ctx)
	if !ok {
		return
	}

	var body ProjectRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	project, err := h.svc.Projects.Create(ctx.Request.Context(), caller, services.ProjectInput(body))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, project)
}

func (h *Handler) ListProjects(ctx *gin.Context) {
	projects, err := h.svc.Projects.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, projects)
}

func (h *Handler) UpdateProject(ctx *gin.Context) {
	id, err := utils.QueryID(ctx, "id")
	if err != nil {
		respondError(ctx, err)
		return
	}

	var body ProjectRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	project, err := h.svc.Projects.Update(ctx.Request.Context(), id, services.ProjectInput(body))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, project)
}

// DeleteProject answers a warning until the request carries confirm=true,
// unless the project has no sprints or issues.
func (h *Handler) DeleteProject(ctx *gin.Context) {
	id, err := utils.QueryID(ctx, "id")
	if err != nil {
		respondError(ctx, err)
		return
	}

	outcome, err := h.svc.Projects.Delete(ctx.Request.Context(), id, utils.QueryBool(ctx, "confirm"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, outcome)
}
