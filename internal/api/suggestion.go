package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"pingup/backend/ai"
	apperrors "pingup/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Suggester produces reply suggestions for a conversation tail
type Suggester interface {
	Generate(ctx context.Context, messages []ai.MessageInput) ([]string, error)
}

type SuggestionHandler struct {
	suggester Suggester
}

func NewSuggestionHandler(s Suggester) *SuggestionHandler {
	return &SuggestionHandler{suggester: s}
}

// ReplySuggestions handles POST /api/ai/reply-suggestions
func (h *SuggestionHandler) ReplySuggestions(c *gin.Context) {
	var req ai.SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.Error(apperrors.NewBadRequestError(apperrors.CodeBadRequest, "Invalid request body").WithCause(err))
		return
	}

	if len(req.Messages) == 0 {
		c.JSON(http.StatusOK, ai.SuggestionResponse{Success: true, Suggestions: []string{}})
		return
	}

	suggestions, err := h.suggester.Generate(c.Request.Context(), req.Messages)
	if err != nil {
		c.Error(apperrors.GenerationFailure(err))
		return
	}

	c.JSON(http.StatusOK, ai.SuggestionResponse{Success: true, Suggestions: suggestions})
}
