package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bank-portal/internal/domain"
	"bank-portal/internal/repository"
	"bank-portal/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth      service.AuthService
	ledger    service.LedgerService
	directory service.DirectoryService
	logger    *logrus.Logger
}

func NewHandler(auth service.AuthService, ledger service.LedgerService, directory service.DirectoryService, logger *logrus.Logger) *Handler {
	return &Handler{
		auth:      auth,
		ledger:    ledger,
		directory: directory,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.signUp)
			auth.POST("/signin", h.signIn)
			auth.POST("/signout", authMiddleware(h.auth), h.signOut)
		}

		customer := api.Group("/customer", authMiddleware(h.auth), requireRole(domain.RoleCustomer))
		{
			customer.GET("/transactions", h.customerTransactions)
			customer.POST("/deposit", h.deposit)
			customer.POST("/withdraw", h.withdraw)
		}

		banker := api.Group("/banker", authMiddleware(h.auth), requireRole(domain.RoleBanker))
		{
			banker.GET("/accounts", h.listAccounts)
			banker.GET("/accounts/:accountId/transactions", h.accountTransactions)
		}
	}
}

type signUpRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type amountRequest struct {
	Amount float64 `json:"amount"`
}

func (h *Handler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	_, err := h.auth.SignUp(c.Request.Context(), req.Username, req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailInUse):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email already in use"})
		case errors.Is(err, service.ErrPasswordTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Password must be at least 6 characters"})
		case errors.Is(err, service.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid role"})
		default:
			h.serverError(c, "signup", err)
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

func (h *Handler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	accessToken, role, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid email or password"})
		case errors.Is(err, service.ErrRoleMismatch):
			c.JSON(http.StatusForbidden, gin.H{"message": "User is not authorized as role '" + req.Role + "'"})
		default:
			h.serverError(c, "signin", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken, "role": role})
}

func (h *Handler) signOut(c *gin.Context) {
	user, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	if err := h.auth.SignOut(c.Request.Context(), user.ID); err != nil {
		h.serverError(c, "signout", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out successfully"})
}

func (h *Handler) customerTransactions(c *gin.Context) {
	user, ok := principalFrom(c)
	if !ok || user.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing user id"})
		return
	}

	snapshot, err := h.ledger.GetSnapshot(c.Request.Context(), user.ID)
	if err != nil {
		h.serverError(c, "get transactions", err)
		return
	}
	c.JSON(http.StatusOK, snapshotToResponse(snapshot))
}

func (h *Handler) deposit(c *gin.Context) {
	user, ok := principalFrom(c)
	if !ok || user.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing user id"})
		return
	}

	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid deposit amount"})
		return
	}

	snapshot, err := h.ledger.Deposit(c.Request.Context(), user.ID, req.Amount)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid deposit amount"})
			return
		}
		h.serverError(c, "deposit", err)
		return
	}
	c.JSON(http.StatusOK, snapshotToResponse(snapshot))
}

func (h *Handler) withdraw(c *gin.Context) {
	user, ok := principalFrom(c)
	if !ok || user.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing user id"})
		return
	}

	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid withdrawal amount"})
		return
	}

	snapshot, err := h.ledger.Withdraw(c.Request.Context(), user.ID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid withdrawal amount"})
		case errors.Is(err, repository.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Account not found"})
		case errors.Is(err, repository.ErrInsufficientFunds):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Insufficient Funds"})
		default:
			h.serverError(c, "withdraw", err)
		}
		return
	}
	c.JSON(http.StatusOK, snapshotToResponse(snapshot))
}

func (h *Handler) listAccounts(c *gin.Context) {
	views, err := h.directory.ListAccounts(c.Request.Context(), c.Query("sortBy"), c.Query("order"))
	if err != nil {
		h.serverError(c, "list accounts", err)
		return
	}

	resp := make([]AccountResponse, len(views))
	for i := range views {
		resp[i] = accountToResponse(views[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) accountTransactions(c *gin.Context) {
	sortBy := c.DefaultQuery("sortBy", "createdAt")
	order := c.DefaultQuery("order", "desc")

	view, err := h.directory.AccountHistory(c.Request.Context(), c.Param("accountId"), sortBy, order)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Account not found"})
			return
		}
		h.serverError(c, "account transactions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": accountToResponse(*view)})
}

// serverError logs the original error and answers with a generic message;
// storage details never reach the client.
func (h *Handler) serverError(c *gin.Context, op string, err error) {
	if h.logger != nil {
		h.logger.WithError(err).Errorf("%s failed", op)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
}

type TransactionResponse struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Amount    float64 `json:"amount"`
	CreatedAt string  `json:"createdAt"`
}

type SnapshotResponse struct {
	Balance      float64               `json:"balance"`
	Transactions []TransactionResponse `json:"transactions"`
}

type OwnerResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type AccountResponse struct {
	ID           string                `json:"id"`
	Owner        OwnerResponse         `json:"user"`
	Balance      float64               `json:"balance"`
	CreatedAt    string                `json:"createdAt"`
	Transactions []TransactionResponse `json:"transactions"`
}

func snapshotToResponse(snapshot *service.Snapshot) SnapshotResponse {
	return SnapshotResponse{
		Balance:      snapshot.Balance,
		Transactions: transactionsToResponse(snapshot.Transactions),
	}
}

func accountToResponse(view service.AccountView) AccountResponse {
	return AccountResponse{
		ID: view.Account.ID,
		Owner: OwnerResponse{
			ID:       view.Owner.ID,
			Username: view.Owner.Username,
			Email:    view.Owner.Email,
		},
		Balance:      view.Account.Balance,
		CreatedAt:    view.Account.CreatedAt.Format(time.RFC3339),
		Transactions: transactionsToResponse(view.Account.Transactions),
	}
}

func transactionsToResponse(txns []domain.Transaction) []TransactionResponse {
	resp := make([]TransactionResponse, len(txns))
	for i := range txns {
		resp[i] = TransactionResponse{
			ID:        txns[i].ID,
			Type:      string(txns[i].Type),
			Amount:    txns[i].Amount,
			CreatedAt: txns[i].CreatedAt.Format(time.RFC3339),
		}
	}
	return resp
}
