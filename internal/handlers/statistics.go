package handlers

import (
	"net/http"
	"time"

	"expense-ledger/internal/analytics"
	"expense-ledger/internal/models"

	"github.com/gin-gonic/gin"
)

// AvailableBalance reports credit minus debit for a user.
func (h *Handlers) AvailableBalance(c *gin.Context) {
	credit, debit, err := h.db.TransactionTotals(c.Param("userId"))
	if err != nil {
		h.serverError(c, "available-balance", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"availableBalance": credit - debit})
}

// CategoryAnalysis reports per-category totals, largest first.
func (h *Handlers) CategoryAnalysis(c *gin.Context) {
	totals, err := h.db.CategoryTotals(c.Param("userId"))
	if err != nil {
		h.serverError(c, "category-analysis", err)
		return
	}
	if totals == nil {
		totals = []models.CategoryTotal{}
	}
	c.JSON(http.StatusOK, totals)
}

// MonthlyTrend reports per-month totals in chronological order.
func (h *Handlers) MonthlyTrend(c *gin.Context) {
	expenses, err := h.db.ListExpensesByUser(c.Param("userId"))
	if err != nil {
		h.serverError(c, "monthly-trend", err)
		return
	}
	c.JSON(http.StatusOK, analytics.MonthlyTrend(expenses))
}

// CategoryPrediction fits a spending trend per category and reports the
// fastest-growing one.
func (h *Handlers) CategoryPrediction(c *gin.Context) {
	expenses, err := h.db.ListExpensesByUser(c.Param("userId"))
	if err != nil {
		h.serverError(c, "category-prediction", err)
		return
	}
	if len(expenses) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No expense data found"})
		return
	}
	c.JSON(http.StatusOK, analytics.CategoryPrediction(expenses, time.Now()))
}
