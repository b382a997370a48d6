package handler

import (
	"context"
	"net/http"

	"github.com/eaglebank/ledger/internal/cqrs"
	"github.com/eaglebank/ledger/internal/middleware"
	"github.com/eaglebank/ledger/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AccountCommander defines the balance operations used by AccountHandler.
type AccountCommander interface {
	Deposit(context.Context, cqrs.DepositCommand) (*models.DepositResult, error)
	Transfer(context.Context, cqrs.TransferCommand) (*models.TransferResult, error)
	Withdraw(context.Context, cqrs.WithdrawCommand) (*models.WithdrawalResult, error)
}

// AccountHandler handles money-movement HTTP requests.
type AccountHandler struct {
	commands AccountCommander
	logger   *zap.Logger
}

type DepositRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"amount_scale,amount_positive"`
}

type TransferRequest struct {
	Source         string          `json:"source" validate:"required"`
	Destination    string          `json:"destination" validate:"required"`
	Amount         decimal.Decimal `json:"amount" validate:"amount_scale,amount_positive"`
	TransactionPin string          `json:"transaction_pin" validate:"required,min=4"`
}

type WithdrawRequest struct {
	Source              string          `json:"source" validate:"required"`
	Destination         string          `json:"destination" validate:"required"`
	DestinationBankName string          `json:"destinationBankName" validate:"required"`
	Amount              decimal.Decimal `json:"amount" validate:"amount_scale,amount_positive"`
	TransactionPin      string          `json:"transaction_pin" validate:"required,min=4"`
}

type DepositResponse struct {
	Success bool                  `json:"success"`
	Details *models.DepositResult `json:"details"`
}

type TransferResponse struct {
	Success bool `json:"success"`
	models.TransferResult
}

type WithdrawResponse struct {
	Success bool `json:"success"`
	models.WithdrawalResult
}

func NewAccountHandler(commands AccountCommander, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{commands: commands, logger: logger}
}

func (h *AccountHandler) Deposit(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req DepositRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.commands.Deposit(c.Request.Context(), cqrs.DepositCommand{
		Owner:  userID,
		Amount: req.Amount,
	})
	if err != nil {
		middleware.RespondWithLedgerError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, DepositResponse{Success: true, Details: result})
}

func (h *AccountHandler) Transfer(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req TransferRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.commands.Transfer(c.Request.Context(), cqrs.TransferCommand{
		Owner:       userID,
		Source:      req.Source,
		Destination: req.Destination,
		Amount:      req.Amount,
		Pin:         req.TransactionPin,
	})
	if err != nil {
		middleware.RespondWithLedgerError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, TransferResponse{Success: true, TransferResult: *result})
}

func (h *AccountHandler) Withdraw(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req WithdrawRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.commands.Withdraw(c.Request.Context(), cqrs.WithdrawCommand{
		Owner:               userID,
		Source:              req.Source,
		Destination:         req.Destination,
		DestinationBankName: req.DestinationBankName,
		Amount:              req.Amount,
		Pin:                 req.TransactionPin,
	})
	if err != nil {
		middleware.RespondWithLedgerError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, WithdrawResponse{Success: true, WithdrawalResult: *result})
}

// bindAndValidate decodes the JSON body into req and writes the 400 response
// itself when decoding or validation fails.
func bindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return false
	}
	return true
}
