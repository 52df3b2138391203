package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"banortesmart/backend/internal/consumption"
	"banortesmart/backend/internal/payment"
	"banortesmart/backend/internal/session"
)

type paymentRequest struct {
	Utility      string  `json:"utility"`
	WeekIndex    int     `json:"week_index"`
	Mode         string  `json:"mode"`
	CustomAmount float64 `json:"custom_amount"`
}

type combinedPaymentRequest struct {
	WeekIndex int `json:"week_index"`
}

// resolveQuote validates the request against the session and the catalog.
// It writes the error response itself.
func (a *App) resolveQuote(c *gin.Context, s session.Session, payload paymentRequest) (consumption.Utility, consumption.WeekRecord, payment.Quote, bool) {
	utility, ok := linkedUtility(c, s, payload.Utility)
	if !ok {
		return "", consumption.WeekRecord{}, payment.Quote{}, false
	}
	mode, err := payment.ParseMode(payload.Mode)
	if err != nil {
		writeDomainError(c, err)
		return "", consumption.WeekRecord{}, payment.Quote{}, false
	}
	view, err := a.catalog.ViewWeek(utility, payload.WeekIndex)
	if err != nil {
		writeDomainError(c, err)
		return "", consumption.WeekRecord{}, payment.Quote{}, false
	}
	quote, err := payment.NewQuote(mode, view.Week.Total, payload.CustomAmount)
	if err != nil {
		writeDomainError(c, err)
		return "", consumption.WeekRecord{}, payment.Quote{}, false
	}
	return utility, view.Week, quote, true
}

func (a *App) quotePayment(c *gin.Context) {
	s, ok := sessionFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Session missing")
		return
	}
	var payload paymentRequest
	if !mustJSON(c, &payload) {
		return
	}
	_, _, quote, ok := a.resolveQuote(c, s, payload)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (a *App) processPayment(c *gin.Context) {
	s, ok := sessionFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Session missing")
		return
	}
	var payload paymentRequest
	if !mustJSON(c, &payload) {
		return
	}
	utility, week, quote, ok := a.resolveQuote(c, s, payload)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, a.payments.Process(utility, week, quote))
}

func (a *App) processCombinedPayment(c *gin.Context) {
	s, ok := sessionFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Session missing")
		return
	}
	var payload combinedPaymentRequest
	if !mustJSON(c, &payload) {
		return
	}
	for _, utility := range consumption.Utilities {
		if err := s.Authorize(utility); err != nil {
			writeDomainError(c, err)
			return
		}
	}
	electricity, water, combined, err := a.catalog.CombinedWeekTotal(payload.WeekIndex)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	view, err := a.catalog.ViewWeek(consumption.Electricity, payload.WeekIndex)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, a.payments.ProcessCombined(view.Week.DateRange, electricity, water, combined))
}
