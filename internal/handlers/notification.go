package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type MarkNotificationRequest struct {
	ID  uint `json:"id"`
	All bool `json:"all"`
}

func (h *Handler) ListNotifications(ctx *gin.Context) {
	caller, ok := currentUser(ctx)
	if !ok {
		return
	}

	notifications, err := h.svc.Notifications.List(ctx.Request.Context(), caller.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, notifications)
}

// MarkNotifications marks one notification read, or all of the caller's
// when the body is {"all": true}.
func (h *Handler) MarkNotifications(ctx *gin.Context) {
	caller, ok := currentUser(ctx)
	if !ok {
		return
	}

	var body MarkNotificationRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	if body.All {
		updated, err := h.svc.Notifications.MarkAllRead(ctx.Request.Context(), caller.ID)
		if err != nil {
			respondError(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"updated": updated})
		return
	}

	notification, err := h.svc.Notifications.MarkRead(ctx.Request.Context(), caller.ID, body.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, notification)
}
