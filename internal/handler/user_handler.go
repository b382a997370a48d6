package handler

import (
	"context"
	"net/http"

	"github.com/eaglebank/ledger/internal/cqrs"
	"github.com/eaglebank/ledger/internal/middleware"
	"github.com/eaglebank/ledger/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserCommander defines the write-side operations used by UserHandler.
type UserCommander interface {
	Register(context.Context, cqrs.RegisterCommand) (*models.Registration, error)
}

// UserQuerier defines the read-side operations used by UserHandler.
type UserQuerier interface {
	GetProfile(context.Context, cqrs.GetProfileQuery) (*models.ProfileView, error)
}

// UserHandler handles user-related HTTP requests.
type UserHandler struct {
	commands UserCommander
	queries  UserQuerier
	logger   *zap.Logger
}

type RegisterRequest struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required,min=8"`
	Pin         string `json:"pin" validate:"required,min=4"`
}

func NewUserHandler(commands UserCommander, queries UserQuerier, logger *zap.Logger) *UserHandler {
	return &UserHandler{commands: commands, queries: queries, logger: logger}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}

	reg, err := h.commands.Register(c.Request.Context(), cqrs.RegisterCommand{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Pin:         req.Pin,
	})
	if err != nil {
		middleware.RespondWithLedgerError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, reg)
}

func (h *UserHandler) GetMe(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	view, err := h.queries.GetProfile(c.Request.Context(), cqrs.GetProfileQuery{UserID: userID})
	if err != nil {
		middleware.RespondWithLedgerError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
