package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Statistics(ctx *gin.Context) {
	caller, ok := currentUser(ctx)
	if !ok {
		return
	}

	stats, err := h.svc.Statistics.Summary(ctx.Request.Context(), caller)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, stats)
}
