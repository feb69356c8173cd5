package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/internal/apperr"
	"github.com/taskhub-dev/taskhub/internal/models"
	"github.com/taskhub-dev/taskhub/internal/services"
	"github.com/taskhub-dev/taskhub/internal/utils"
)

type CreateIssueRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Priority    models.Priority  `json:"priority"`
	Type        models.IssueType `json:"type"`
	ProjectID   uint             `json:"projectId"`
	SprintID    *uint            `json:"sprintId"`
	AssigneeID  *uint            `json:"assigneeId"`
	DueDate     string           `json:"dueDate"`
}

type UpdateIssueRequest struct {
	ID         uint             `json:"id"`
	Status     *models.Status   `json:"status"`
	Priority   *models.Priority `json:"priority"`
	AssigneeID *uint            `json:"assigneeId"`
}

// issueInput reads an issue from JSON or from a multipart form whose
// optional file field is "file". The returned func releases the upload.
func issueInput(ctx *gin.Context) (services.CreateIssueInput, func(), error) {
	noop := func() {}

	if !isMultipart(ctx) {
		var body CreateIssueRequest
		if err := bindJSON(ctx, &body); err != nil {
			return services.CreateIssueInput{}, noop, err
		}

		due, err := parseDueDate("dueDate", body.DueDate)
		if err != nil {
			return services.CreateIssueInput{}, noop, err
		}

		return services.CreateIssueInput{
			Title:       body.Title,
			Description: body.Description,
			Priority:    body.Priority,
			Type:        body.Type,
			ProjectID:   body.ProjectID,
			SprintID:    body.SprintID,
			AssigneeID:  body.AssigneeID,
			DueDate:     due,
		}, noop, nil
	}

	in := services.CreateIssueInput{
		Title:       ctx.PostForm("title"),
		Description: ctx.PostForm("description"),
		Priority:    models.Priority(ctx.PostForm("priority")),
		Type:        models.IssueType(ctx.PostForm("type")),
	}

	projectID, err := formID(ctx, "projectId")
	if err != nil {
		return in, noop, err
	}
	if projectID == nil {
		return in, noop, apperr.Validation("projectId is required")
	}
	in.ProjectID = *projectID

	if in.SprintID, err = formID(ctx, "sprintId"); err != nil {
		return in, noop, err
	}
	if in.AssigneeID, err = formID(ctx, "assigneeId"); err != nil {
		return in, noop, err
	}
	if in.DueDate, err = parseDueDate("dueDate", ctx.PostForm("dueDate")); err != nil {
		return in, noop, err
	}

	attachment, release, err := formUpload(ctx, "file")
	if err != nil {
		return in, release, err
	}
	in.Attachment = attachment

	return in, release, nil
}

func (h *Handler) CreateIssue(ctx *gin.Context) {
	caller, ok := currentUser(ctx)
	if !ok {
		return
	}

	in, release, err := issueInput(ctx)
	defer release()
	if err != nil {
		respondError(ctx, err)
		return
	}

	issue, err := h.svc.Issues.Create(ctx.Request.Context(), caller, in)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, issue)
}

func (h *Handler) ListIssues(ctx *gin.Context) {
	caller, ok := currentUser(ctx)
	if !ok {
		return
	}

	var filter services.IssueFilter
	var err error

	if filter.ProjectID, err = utils.OptionalQueryID(ctx, "projectId"); err != nil {
		respondError(ctx, err)
		return
	}
	if filter.SprintID, err = utils.OptionalQueryID(ctx, "sprintId"); err != nil {
		respondError(ctx, err)
		return
	}
	filter.Status = models.Status(ctx.Query("status"))

	issues, err := h.svc.Issues.List(ctx.Request.Context(), caller, filter)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, issues)
}

func (h *Handler) UpdateIssue(ctx *gin.Context) {
	caller, ok := currentUser(ctx)
	if !ok {
		return
	}

	var body UpdateIssueRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	issue, err := h.svc.Issues.Update(ctx.Request.Context(), caller, services.UpdateIssueInput(body))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, issue)
}
