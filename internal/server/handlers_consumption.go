package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"banortesmart/backend/internal/consumption"
)

type weekListItem struct {
	Index     int     `json:"index"`
	Number    int     `json:"week_number"`
	DateRange string  `json:"date_range"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Total     float64 `json:"total"`
	IsCurrent bool    `json:"is_current"`
}

func (a *App) listWeeks(c *gin.Context) {
	s, ok := sessionFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Session missing")
		return
	}
	utility, ok := linkedUtility(c, s, c.Param("utility"))
	if !ok {
		return
	}
	dataset, err := a.catalog.Dataset(utility)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	weeks := make([]weekListItem, 0, len(dataset.Weeks))
	for i, week := range dataset.Weeks {
		weeks = append(weeks, weekListItem{
			Index:     i,
			Number:    week.Number,
			DateRange: week.DateRange,
			StartDate: week.StartDate,
			EndDate:   week.EndDate,
			Total:     week.Total,
			IsCurrent: i == 0,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"utility": utility,
		"label":   utility.Label(),
		"unit":    utility.Unit(),
		"weeks":   weeks,
	})
}

func (a *App) getWeek(c *gin.Context) {
	s, ok := sessionFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Session missing")
		return
	}
	utility, ok := linkedUtility(c, s, c.Param("utility"))
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "Week index must be an integer")
		return
	}
	view, err := a.catalog.ViewWeek(utility, index)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (a *App) getSummary(c *gin.Context) {
	s, ok := sessionFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Session missing")
		return
	}
	utility, ok := linkedUtility(c, s, c.Param("utility"))
	if !ok {
		return
	}
	summary, err := a.catalog.Summary(utility)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary":         summary,
		"spike_threshold": summary.SpikeThreshold(),
		"formatted": gin.H{
			"average_daily_cost": consumption.FormatAmount(summary.AverageDailyCost),
			"savings_amount":     consumption.FormatAmount(summary.Savings.Amount),
		},
	})
}
