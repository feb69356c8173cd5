package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/internal/models"
)

// WebSocket streams the caller's notifications. Browsers cannot set headers
// on the upgrade request, so a token query parameter is accepted as well.
func (h *Handler) WebSocket(ctx *gin.Context) {
	header := ctx.GetHeader("Authorization")
	if header == "" {
		if token := ctx.Query("token"); token != "" {
			header = "Bearer " + token
		}
	}

	identity, err := h.tokens.Authorize(header, models.AllRoles)
	if err != nil {
		respondError(ctx, err)
		return
	}

	h.hub.Serve(ctx.Writer, ctx.Request, identity.ID)
}
