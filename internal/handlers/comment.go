package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/internal/utils"
)

type CreateCommentRequest struct {
	IssueID uint   `json:"issueId"`
	Body    string `json:"body"`
}

type UpdateCommentRequest struct {
	ID   uint   `json:"id"`
	Body string `json:"body"`
}

func (h *Handler) CreateComment(ctx *gin.Context) {
	caller, ok := currentUser(ctx)
	if !ok {
		return
	}

	var body CreateCommentRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	comment, err := h.svc.Comments.Create(ctx.Request.Context(), caller, body.IssueID, body.Body)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, comment)
}

func (h *Handler) ListComments(ctx *gin.Context) {
	issueID, err := utils.QueryID(ctx, "issueId")
	if err != nil {
		respondError(ctx, err)
		return
	}

	comments, err := h.svc.Comments.List(ctx.Request.Context(), issueID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, comments)
}

func (h *Handler) UpdateComment(ctx *gin.Context) {
	caller, ok := currentUser(ctx)
	if !ok {
		return
	}

	var body UpdateCommentRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	comment, err := h.svc.Comments.Update(ctx.Request.Context(), caller, body.ID, body.Body)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, comment)
}

func (h *Handler) DeleteComment(ctx *gin.Context) {
	caller, ok := currentUser(ctx)
	if !ok {
		return
	}

	id, err := utils.QueryID(ctx, "id")
	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := h.svc.Comments.Delete(ctx.Request.Context(), caller, id); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}
