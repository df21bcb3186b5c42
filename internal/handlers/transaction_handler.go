package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "urwallet/internal/errors"
	"urwallet/internal/models"
	"urwallet/internal/pagination"
	"urwallet/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
// Type is checked by the service so an unknown value reports INVALID_TRANSACTION_TYPE.
type CreateTransactionRequest struct {
	Amount       decimal.Decimal        `json:"amount" swaggertype:"string" example:"12.50"`
	Type         models.TransactionType `json:"type" binding:"required" example:"expense"`
	Category     string                 `json:"category" binding:"max=50" example:"Food"`
	Source       *models.ExpenseSource  `json:"source" binding:"omitempty,expense_source" example:"budget"`
	AddToSavings bool                   `json:"add_to_savings"`
	Remarks      *string                `json:"remarks" binding:"omitempty,max=500" example:"lunch with team"`
	Date         string                 `json:"date" binding:"required,ymd_date" example:"2025-03-14"`
	Currency     string                 `json:"currency" binding:"omitempty,currency_code" example:"USD"`
}

// UpdateTransactionRequest is a partial update. Omitted keys are left
// unchanged. Only source and remarks may be null, which clears them.
type UpdateTransactionRequest struct {
	Amount   Nullable[decimal.Decimal]        `json:"amount" swaggertype:"string" example:"20.00"`
	Type     Nullable[models.TransactionType] `json:"type" swaggertype:"string" example:"expense"`
	Category Nullable[string]                 `json:"category" swaggertype:"string" example:"Travel"`
	Source   Nullable[models.ExpenseSource]   `json:"source" swaggertype:"string" example:"savings"`
	Remarks  Nullable[string]                 `json:"remarks" swaggertype:"string"`
	Date     Nullable[string]                 `json:"date" swaggertype:"string" example:"2025-03-15"`
	Currency Nullable[string]                 `json:"currency" swaggertype:"string" example:"MYR"`
}

func (r UpdateTransactionRequest) toFields() (services.TransactionUpdateFields, error) {
	var f services.TransactionUpdateFields
	var err error
	if f.Amount, err = required("amount", r.Amount); err != nil {
		return f, err
	}
	if f.Type, err = required("type", r.Type); err != nil {
		return f, err
	}
	if f.Category, err = required("category", r.Category); err != nil {
		return f, err
	}
	if f.Date, err = required("date", r.Date); err != nil {
		return f, err
	}
	if f.Currency, err = required("currency", r.Currency); err != nil {
		return f, err
	}
	f.Source = clearable(r.Source)
	f.Remarks = clearable(r.Remarks)
	return f, nil
}

func (r UpdateTransactionRequest) changes() map[string]interface{} {
	changes := map[string]interface{}{}
	add := func(key string, set bool, value interface{}) {
		if set {
			changes[key] = value
		}
	}
	add("amount", r.Amount.Set, r.Amount.Value)
	add("type", r.Type.Set, r.Type.Value)
	add("category", r.Category.Set, r.Category.Value)
	add("source", r.Source.Set, r.Source.Value)
	add("remarks", r.Remarks.Set, r.Remarks.Value)
	add("date", r.Date.Set, r.Date.Value)
	add("currency", r.Currency.Set, r.Currency.Value)
	return changes
}

// TransactionListQuery holds the filters accepted by the list endpoint.
type TransactionListQuery struct {
	Type      string `form:"type" binding:"omitempty,transaction_type"`
	Category  string `form:"category"`
	Source    string `form:"source" binding:"omitempty,expense_source"`
	Month     int    `form:"month" binding:"omitempty,min=1,max=12"`
	Year      int    `form:"year" binding:"omitempty,min=1,max=9999"`
	FromDate  string `form:"from_date" binding:"omitempty,ymd_date"`
	ToDate    string `form:"to_date" binding:"omitempty,ymd_date"`
	MinAmount string `form:"min_amount" binding:"omitempty,numeric"`
	MaxAmount string `form:"max_amount" binding:"omitempty,numeric"`
}

func (q TransactionListQuery) toFilter() (services.TransactionFilter, error) {
	var f services.TransactionFilter
	if q.Type != "" {
		t := models.TransactionType(q.Type)
		f.Type = &t
	}
	if q.Category != "" {
		f.Category = &q.Category
	}
	if q.Source != "" {
		s := models.ExpenseSource(q.Source)
		f.Source = &s
	}
	if (q.Month == 0) != (q.Year == 0) {
		return f, apperrors.WithMessage(apperrors.ErrInvalidInput, "month and year must be given together")
	}
	if q.Month != 0 {
		prefix := services.MonthPrefix(q.Year, q.Month)
		f.Month = &prefix
	}
	if q.FromDate != "" {
		f.FromDate = &q.FromDate
	}
	if q.ToDate != "" {
		f.ToDate = &q.ToDate
	}
	if q.MinAmount != "" {
		d, err := decimal.NewFromString(q.MinAmount)
		if err != nil {
			return f, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid min_amount")
		}
		f.MinAmount = &d
	}
	if q.MaxAmount != "" {
		d, err := decimal.NewFromString(q.MaxAmount)
		if err != nil {
			return f, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid max_amount")
		}
		f.MaxAmount = &d
	}
	return f, nil
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record income or an expense. Expenses paid from savings debit the savings balance; income with add_to_savings credits it and is stored under the Savings category.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient savings"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request.Context(), userID, services.CreateTransactionInput{
		Amount:       req.Amount,
		Type:         req.Type,
		Category:     req.Category,
		Source:       req.Source,
		AddToSavings: req.AddToSavings,
		Remarks:      req.Remarks,
		Date:         req.Date,
		Currency:     req.Currency,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{
			"type":           transaction.Type,
			"amount":         transaction.Amount,
			"category":       transaction.Category,
			"source":         transaction.Source,
			"add_to_savings": req.AddToSavings,
		})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetUserTransactions handles listing the user's transactions
// @Summary     List transactions
// @Description Get a paginated, filtered list of the user's transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 20, max 100)"
// @Param       sort       query string false "Sort column (date, amount, created_at, category)"
// @Param       order      query string false "Sort order (asc, desc)"
// @Param       type       query string false "Filter by type (income, expense)"
// @Param       category   query string false "Filter by category"
// @Param       source     query string false "Filter by expense source (budget, savings)"
// @Param       month      query int    false "Filter by month (requires year)"
// @Param       year       query int    false "Filter by year (requires month)"
// @Param       from_date  query string false "Filter by start date (YYYY-MM-DD)"
// @Param       to_date    query string false "Filter by end date (YYYY-MM-DD)"
// @Param       min_amount query string false "Filter by minimum amount"
// @Param       max_amount query string false "Filter by maximum amount"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		badRequest(c, err)
		return
	}
	var sort pagination.SortRequest
	if err := c.ShouldBindQuery(&sort); err != nil {
		badRequest(c, err)
		return
	}
	var query TransactionListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}
	filter, err := query.toFilter()
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(c.Request.Context(), userID, page, sort, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetTransactionByID handles the retrieval of a transaction by ID
// @Summary     Get a transaction
// @Description Get a single transaction owned by the user
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parseTransactionID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(c.Request.Context(), userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction handles partial updates of a transaction
// @Summary     Update a transaction
// @Description Change any subset of fields. The savings balance is adjusted for expenses paid from savings; the update is rejected without changes when savings cannot cover it.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to change"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient savings"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parseTransactionID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	fields, err := req.toFields()
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request.Context(), userID, transactionID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(), req.changes())

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles the deletion of a transaction
// @Summary     Delete a transaction
// @Description Delete a transaction and reverse its effect on the savings balance
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]string "Deletion confirmation"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parseTransactionID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}
