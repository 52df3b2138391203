package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"banortesmart/backend/internal/assistant"
)

type chatMessageRequest struct {
	Message string `json:"message"`
}

func (a *App) quickQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"assistant": assistant.PersonaName,
		"greeting":  assistant.Greeting,
		"questions": assistant.QuickQuestions(),
	})
}

func (a *App) listMessages(c *gin.Context) {
	s, ok := sessionFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Session missing")
		return
	}
	messages, err := a.conversation.History(c.Request.Context(), s.ID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": s.ID,
		"messages":   messages,
	})
}

func (a *App) sendMessage(c *gin.Context) {
	s, ok := sessionFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Session missing")
		return
	}
	var payload chatMessageRequest
	if !mustJSON(c, &payload) {
		return
	}
	turn, err := a.conversation.Send(c.Request.Context(), s.ID, payload.Message)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": s.ID,
		"question":   turn.Question,
		"answer":     turn.Answer,
	})
}
