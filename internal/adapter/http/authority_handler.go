package http

import (
	"net/http"
	"time"

	authDomain "approval-engine/internal/domain/authority"
	"approval-engine/internal/usecase/registry"
	"approval-engine/internal/usecase/resolver"

	"github.com/labstack/echo/v4"
)

type AuthorityHandler struct {
	registry *registry.Service
	resolver *resolver.Service
}

func NewAuthorityHandler(reg *registry.Service, res *resolver.Service) *AuthorityHandler {
	return &AuthorityHandler{registry: reg, resolver: res}
}

type createAuthorityReq struct {
	Name             string   `json:"name"              validate:"required"`
	Code             string   `json:"code"              validate:"required"`
	Type             string   `json:"type"              validate:"required,oneof=financial operational hr procurement legal it admin"`
	TransactionTypes []string `json:"transaction_types" validate:"required,min=1"`
	MinAmount        *float64 `json:"min_amount,omitempty" validate:"omitempty,gte=0,dec2"`
	MaxAmount        *float64 `json:"max_amount,omitempty" validate:"omitempty,gt=0,dec2"`
	Currency         string   `json:"currency"          validate:"required,len=3"`
	RiskLevel        string   `json:"risk_level"        validate:"required,oneof=low medium high critical"`
	DepartmentID     *string  `json:"department_id,omitempty" validate:"omitempty,hex32"`
	SLAHours         int      `json:"sla_hours,omitempty" validate:"omitempty,gt=0"`
}

func (h *AuthorityHandler) Create(c echo.Context) error {
	actor := actorID(c)
	if actor == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing " + actorHeader + " header"})
	}
	var req createAuthorityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	a, err := h.registry.CreateAuthority(c.Request().Context(), registry.CreateAuthorityInput{
		Name:             req.Name,
		Code:             req.Code,
		Type:             authDomain.Type(req.Type),
		TransactionTypes: req.TransactionTypes,
		MinAmount:        req.MinAmount,
		MaxAmount:        req.MaxAmount,
		Currency:         req.Currency,
		RiskLevel:        authDomain.RiskLevel(req.RiskLevel),
		DepartmentID:     req.DepartmentID,
		SLAHours:         req.SLAHours,
		ActorID:          actor,
	})
	if err != nil {
		code, body := fail(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusCreated, a)
}

type assignHolderReq struct {
	PersonID          string  `json:"person_id"  validate:"required,hex32"`
	IsPrimary         bool    `json:"is_primary"`
	CanDelegate       bool    `json:"can_delegate"`
	MaxDelegationDays int     `json:"max_delegation_days,omitempty" validate:"omitempty,gt=0"`
	ValidFrom         string  `json:"valid_from" validate:"required"`
	ValidTo           *string `json:"valid_to,omitempty"`
}

func (h *AuthorityHandler) AssignHolder(c echo.Context) error {
	actor := actorID(c)
	if actor == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing " + actorHeader + " header"})
	}
	var req assignHolderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	from, err := time.Parse(time.RFC3339, req.ValidFrom)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "valid_from must be RFC3339"})
	}
	var to *time.Time
	if req.ValidTo != nil {
		t, err := time.Parse(time.RFC3339, *req.ValidTo)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "valid_to must be RFC3339"})
		}
		tu := t.UTC()
		to = &tu
	}
	holder, err := h.registry.AssignHolder(c.Request().Context(), registry.AssignHolderInput{
		AuthorityID:       c.Param("authority_id"),
		PersonID:          req.PersonID,
		IsPrimary:         req.IsPrimary,
		CanDelegate:       req.CanDelegate,
		MaxDelegationDays: req.MaxDelegationDays,
		ValidFrom:         from.UTC(),
		ValidTo:           to,
		ActorID:           actor,
	})
	if err != nil {
		code, body := fail(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusCreated, holder)
}

// ResolveHolder answers "who holds this authority at time t"; t defaults to
// now. Read-only, safe for concurrent use.
func (h *AuthorityHandler) ResolveHolder(c echo.Context) error {
	at := time.Now().UTC()
	if raw := c.QueryParam("at"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "at must be RFC3339"})
		}
		at = t.UTC()
	}
	res, err := h.resolver.CurrentHolder(c.Request().Context(), c.Param("authority_id"), at)
	if err != nil {
		code, body := fail(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusOK, res)
}
