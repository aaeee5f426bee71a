package http

import (
	"net/http"

	reqDomain "approval-engine/internal/domain/request"
	uc "approval-engine/internal/usecase/request"

	"github.com/labstack/echo/v4"
)

// actorHeader carries the explicit actor identity; the engine never infers it
// from ambient context.
const actorHeader = "Ax-Actor-Id"

type RequestHandler struct{ uc *uc.Usecase }

func NewRequestHandler(u *uc.Usecase) *RequestHandler { return &RequestHandler{uc: u} }

func actorID(c echo.Context) string { return c.Request().Header.Get(actorHeader) }

type submitReq struct {
	TransactionType string  `json:"transaction_type" validate:"required"`
	Amount          float64 `json:"amount"           validate:"required,gt=0,dec2"`
	Currency        string  `json:"currency"         validate:"required,len=3"`
	DepartmentID    *string `json:"department_id,omitempty" validate:"omitempty,hex32"`
	Priority        string  `json:"priority,omitempty" validate:"omitempty,oneof=low normal high"`
	IsUrgent        bool    `json:"is_urgent"`
}

func (h *RequestHandler) Submit(c echo.Context) error {
	requester := actorID(c)
	if requester == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing " + actorHeader + " header"})
	}
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Submit(c.Request().Context(), uc.SubmitInput{
		RequesterID:     requester,
		TransactionType: req.TransactionType,
		Amount:          req.Amount,
		Currency:        req.Currency,
		DepartmentID:    req.DepartmentID,
		Priority:        reqDomain.Priority(req.Priority),
		IsUrgent:        req.IsUrgent,
	})
	if err != nil {
		code, body := fail(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusCreated, dto)
}

type actReq struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	Comments string `json:"comments,omitempty"`
}

func (h *RequestHandler) Act(c echo.Context) error {
	actor := actorID(c)
	if actor == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing " + actorHeader + " header"})
	}
	requestID := c.Param("request_id")
	levelOrder, err := intParam(c, "level_order")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid level_order path param"})
	}
	var req actReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Act(c.Request().Context(), uc.ActInput{
		RequestID:  requestID,
		LevelOrder: levelOrder,
		ActorID:    actor,
		Decision:   reqDomain.Decision(req.Decision),
		Comments:   req.Comments,
	})
	if err != nil {
		code, body := fail(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *RequestHandler) Cancel(c echo.Context) error {
	actor := actorID(c)
	if actor == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing " + actorHeader + " header"})
	}
	dto, err := h.uc.Cancel(c.Request().Context(), c.Param("request_id"), actor)
	if err != nil {
		code, body := fail(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *RequestHandler) Status(c echo.Context) error {
	dto, err := h.uc.Status(c.Request().Context(), c.Param("request_id"))
	if err != nil {
		code, body := fail(err)
		return c.JSON(code, body)
	}
	return c.JSON(http.StatusOK, dto)
}
