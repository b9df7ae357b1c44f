package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"expense-ledger/internal/models"

	"github.com/gin-gonic/gin"
)

type addExpenseReq struct {
	Amount          *float64 `json:"amount" binding:"required"`
	Date            string   `json:"date" binding:"required"`
	Category        string   `json:"category" binding:"required"`
	Description     string   `json:"description"`
	UserID          string   `json:"userId" binding:"required"`
	TransactionType string   `json:"transactionType" binding:"required,oneof=credit debit"`
}

// AddExpense creates a new expense record.
func (h *Handlers) AddExpense(c *gin.Context) {
	var req addExpenseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "amount, date, category, userId and a valid transactionType are required"})
		return
	}

	expense := &models.Expense{
		Amount:          *req.Amount,
		Date:            req.Date,
		Category:        req.Category,
		Description:     req.Description,
		UserID:          req.UserID,
		TransactionType: req.TransactionType,
	}
	if _, err := h.db.CreateExpense(expense); err != nil {
		h.serverError(c, "add-expense: insert", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Expense added successfully!"})
}

// ListExpenses returns every expense, newest date first.
func (h *Handlers) ListExpenses(c *gin.Context) {
	expenses, err := h.db.ListExpenses()
	if err != nil {
		h.serverError(c, "list-expenses", err)
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	c.JSON(http.StatusOK, expenses)
}

// ListUserExpenses returns one user's expenses, newest date first.
func (h *Handlers) ListUserExpenses(c *gin.Context) {
	expenses, err := h.db.ListExpensesByUser(c.Param("userId"))
	if err != nil {
		h.serverError(c, "list-user-expenses", err)
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	c.JSON(http.StatusOK, expenses)
}

type updateExpenseReq struct {
	Amount          *float64 `json:"amount"`
	Date            *string  `json:"date"`
	Category        *string  `json:"category"`
	Description     *string  `json:"description"`
	TransactionType *string  `json:"transactionType" binding:"omitempty,oneof=credit debit"`
}

// UpdateExpense overlays the provided fields onto an existing expense.
// Updating an unknown id is a no-op that still reports success, matching
// how the ledger has always behaved.
func (h *Handlers) UpdateExpense(c *gin.Context) {
	var req updateExpenseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid expense payload"})
		return
	}

	expense, err := h.db.GetExpense(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusOK, gin.H{"message": "Expense updated successfully!"})
		} else {
			h.serverError(c, "update-expense: lookup", err)
		}
		return
	}

	if req.Amount != nil {
		expense.Amount = *req.Amount
	}
	if req.Date != nil {
		expense.Date = *req.Date
	}
	if req.Category != nil {
		expense.Category = *req.Category
	}
	if req.Description != nil {
		expense.Description = *req.Description
	}
	if req.TransactionType != nil {
		expense.TransactionType = *req.TransactionType
	}

	if err := h.db.UpdateExpense(expense); err != nil {
		h.serverError(c, "update-expense: save", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense updated successfully!"})
}

// DeleteExpense removes one expense by id.
func (h *Handlers) DeleteExpense(c *gin.Context) {
	if err := h.db.DeleteExpense(c.Param("id")); err != nil {
		h.serverError(c, "delete-expense", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully!"})
}

type deleteMultipleReq struct {
	IDs []string `json:"ids"`
}

// DeleteMultiple removes every expense whose id appears in the request.
func (h *Handlers) DeleteMultiple(c *gin.Context) {
	var req deleteMultipleReq
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No IDs provided"})
		return
	}

	if err := h.db.DeleteExpenses(req.IDs); err != nil {
		h.serverError(c, "delete-multiple", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Selected expenses deleted successfully"})
}
