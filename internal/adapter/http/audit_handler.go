package http

import (
	"net/http"

	auditDomain "approval-engine/internal/domain/audit"

	"github.com/labstack/echo/v4"
)

// AuditHandler is a thin read adapter over the append-only trail; there is no
// usecase layer because there is no behavior, only a filtered read.
type AuditHandler struct{ repo auditDomain.Repository }

func NewAuditHandler(repo auditDomain.Repository) *AuditHandler { return &AuditHandler{repo: repo} }

func (h *AuditHandler) Trail(c echo.Context) error {
	kind := auditDomain.EntityKind(c.Param("entity_kind"))
	switch kind {
	case auditDomain.KindRequest, auditDomain.KindDelegation, auditDomain.KindAuthority:
	default:
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "entity_kind must be request, delegation or authority"})
	}
	entries, err := h.repo.ListByEntity(c.Request().Context(), kind, c.Param("entity_id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "audit trail unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]any{"entries": entries})
}
