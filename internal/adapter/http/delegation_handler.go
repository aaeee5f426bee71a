package http

import (
	"net/http"
	"time"

	uc "approval-engine/internal/usecase/delegation"

	delDomain "approval-engine/internal/domain/delegation"

	"github.com/labstack/echo/v4"
)

type DelegationHandler struct{ uc *uc.Usecase }

func NewDelegationHandler(u *uc.Usecase) *DelegationHandler { return &DelegationHandler{uc: u} }

type createDelegationReq struct {
	DelegatorHolderID        string   `json:"delegator_holder_id" validate:"required,hex32"`
	DelegateePersonID        string   `json:"delegatee_person_id" validate:"required,hex32"`
	AuthorityID              string   `json:"authority_id"        validate:"required,hex32"`
	Type                     string   `json:"type"                validate:"required,oneof=full partial specific"`
	StartDate                string   `json:"start_date"          validate:"required"`
	EndDate                  string   `json:"end_date"            validate:"required"`
	MaxAmount                *float64 `json:"max_amount,omitempty" validate:"omitempty,gt=0,dec2"`
	AllowedTransactionTypes  []string `json:"allowed_transaction_types,omitempty"`
	ExcludedTransactionTypes []string `json:"excluded_transaction_types,omitempty"`
	AllowSubDelegation       bool     `json:"allow_sub_delegation"`
	RequiresNotification     bool     `json:"requires_notification"`
	Reason                   string   `json:"reason,omitempty"`
}

func (h *DelegationHandler) Create(c echo.Context) error {
	actor := actorID(c)
	if actor == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing " + actorHeader + " header"})
	}
	var req createDelegationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	start, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "start_date must be RFC3339"})
	}
	end, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "end_date must be RFC3339"})
	}

	d, err := h.uc.Create(c.Request().Context(), uc.CreateInput{
		DelegatorHolderID:        req.DelegatorHolderID,
		DelegateePersonID:        req.DelegateePersonID,
		AuthorityID:              req.AuthorityID,
		Type:                     delDomain.Type(req.Type),
		StartDate:                start.UTC(),
		EndDate:                  end.UTC(),
		MaxAmount:                req.MaxAmount,
		AllowedTransactionTypes:  req.AllowedTransactionTypes,
		ExcludedTransactionTypes: req.ExcludedTransactionTypes,
		AllowSubDelegation:       req.AllowSubDelegation,
		RequiresNotification:     req.RequiresNotification,
		Reason:                   req.Reason,
		ActorID:                  actor,
	})
	if err != nil {
		code, body := fail(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *DelegationHandler) Approve(c echo.Context) error {
	actor := actorID(c)
	if actor == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing " + actorHeader + " header"})
	}
	d, err := h.uc.Approve(c.Request().Context(), c.Param("delegation_id"), actor)
	if err != nil {
		code, body := fail(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusOK, d)
}

type reasonReq struct {
	Reason string `json:"reason,omitempty"`
}

func (h *DelegationHandler) Reject(c echo.Context) error {
	actor := actorID(c)
	if actor == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing " + actorHeader + " header"})
	}
	var req reasonReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	d, err := h.uc.Reject(c.Request().Context(), c.Param("delegation_id"), actor, req.Reason)
	if err != nil {
		code, body := fail(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DelegationHandler) Revoke(c echo.Context) error {
	actor := actorID(c)
	if actor == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing " + actorHeader + " header"})
	}
	var req reasonReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	d, err := h.uc.Revoke(c.Request().Context(), c.Param("delegation_id"), actor, req.Reason)
	if err != nil {
		code, body := fail(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DelegationHandler) Get(c echo.Context) error {
	d, err := h.uc.Get(c.Request().Context(), c.Param("delegation_id"))
	if err != nil {
		code, body := fail(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusOK, d)
}
