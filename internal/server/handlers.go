package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"banortesmart/backend/internal/consumption"
	"banortesmart/backend/internal/session"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type linkRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token          string              `json:"token,omitempty"`
	Session        session.Session     `json:"session"`
	DefaultUtility consumption.Utility `json:"default_utility"`
	Message        string              `json:"message,omitempty"`
}

func newSessionResponse(token string, s session.Session) sessionResponse {
	return sessionResponse{Token: token, Session: s, DefaultUtility: s.DefaultUtility()}
}

func (a *App) login(c *gin.Context) {
	var payload loginRequest
	if !mustJSON(c, &payload) {
		return
	}
	s, token, err := a.sessions.Login(payload.Username, payload.Password)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(token, s))
}

func (a *App) logout(c *gin.Context) {
	s, ok := sessionFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Session missing")
		return
	}
	a.sessions.Logout(s)
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

func (a *App) getSession(c *gin.Context) {
	s, ok := sessionFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Session missing")
		return
	}
	c.JSON(http.StatusOK, newSessionResponse("", s))
}

func (a *App) acceptConsent(c *gin.Context) {
	s, ok := sessionFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Session missing")
		return
	}
	s, token, err := a.sessions.AcceptConsent(s)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(token, s))
}

func (a *App) linkService(c *gin.Context) {
	s, ok := sessionFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Session missing")
		return
	}
	utility, err := consumption.ParseUtility(c.Param("utility"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	var payload linkRequest
	if !mustJSON(c, &payload) {
		return
	}

	s, token, message, err := a.sessions.Link(s, utility, payload.Email, payload.Password)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response := newSessionResponse(token, s)
	response.Message = message
	c.JSON(http.StatusOK, response)
}
