package http

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	delDomain "approval-engine/internal/domain/delegation"

	"github.com/labstack/echo/v4"
)

func delegationBody(days int) map[string]any {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	return map[string]any{
		"delegator_holder_id": tHolder,
		"delegatee_person_id": tStranger,
		"authority_id":        tAuthority,
		"type":                "partial",
		"start_date":          start.Format(time.RFC3339),
		"end_date":            start.AddDate(0, 0, days).Format(time.RFC3339),
		"max_amount":          50_000,
		"reason":              "annual leave",
	}
}

func doCreateDelegation(t *testing.T, e *echo.Echo, h *DelegationHandler, body any, actor string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(stdhttp.MethodPost, "/delegations", mustJSON(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if actor != "" {
		req.Header.Set(actorHeader, actor)
	}
	rec := httptest.NewRecorder()
	if err := h.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	return rec
}

func TestCreateDelegation_Success(t *testing.T) {
	e := newEchoWithValidator()
	eng := newEngine(t)
	h := NewDelegationHandler(eng.delegationUC)

	rec := doCreateDelegation(t, e, h, delegationBody(14), tApprover)
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var got delDomain.Delegation
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.Status != delDomain.StatusPending || got.DelegationID == "" {
		t.Fatalf("unexpected delegation: %+v", got)
	}
}

func TestCreateDelegation_ConstraintViolationConflict(t *testing.T) {
	e := newEchoWithValidator()
	eng := newEngine(t)
	h := NewDelegationHandler(eng.delegationUC)

	// window longer than the holder's max_delegation_days
	rec := doCreateDelegation(t, e, h, delegationBody(45), tApprover)
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", rec.Code, rec.Body.String())
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if !strings.Contains(er.Error, "max_delegation_days") {
		t.Fatalf("response must name the violated rule: %q", er.Error)
	}
}

func TestCreateDelegation_BadDate(t *testing.T) {
	e := newEchoWithValidator()
	h := NewDelegationHandler(newEngine(t).delegationUC)

	body := delegationBody(14)
	body["start_date"] = "June 1st"
	rec := doCreateDelegation(t, e, h, body, tApprover)
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateDelegation_ValidationError(t *testing.T) {
	e := newEchoWithValidator()
	h := NewDelegationHandler(newEngine(t).delegationUC)

	body := delegationBody(14)
	body["type"] = "temporary"
	body["delegator_holder_id"] = "NOT_HEX"
	rec := doCreateDelegation(t, e, h, body, tApprover)
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if !containsFieldMsg(er.Details, "Type", "one of") {
		t.Fatalf("missing type detail: %+v", er.Details)
	}
	if !containsFieldMsg(er.Details, "DelegatorHolderID", "hex") {
		t.Fatalf("missing holder id detail: %+v", er.Details)
	}
}

func TestApproveRevokeDelegation_Flow(t *testing.T) {
	e := newEchoWithValidator()
	eng := newEngine(t)
	h := NewDelegationHandler(eng.delegationUC)

	var created delDomain.Delegation
	rec := doCreateDelegation(t, e, h, delegationBody(14), tApprover)
	_ = json.Unmarshal(rec.Body.Bytes(), &created)

	call := func(method func(echo.Context) error, body any) *httptest.ResponseRecorder {
		var rd *strings.Reader
		if body == nil {
			rd = strings.NewReader("{}")
		} else {
			b, _ := json.Marshal(body)
			rd = strings.NewReader(string(b))
		}
		req := httptest.NewRequest(stdhttp.MethodPost, "/delegations/:delegation_id", rd)
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(actorHeader, tApprover)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("delegation_id")
		c.SetParamValues(created.DelegationID)
		if err := method(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		return rec
	}

	rec = call(h.Approve, nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("approve status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var got delDomain.Delegation
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != delDomain.StatusActive {
		t.Fatalf("status = %s, want active", got.Status)
	}

	// revocation without a reason is a conflict; with one it succeeds
	if rec := call(h.Revoke, map[string]any{}); rec.Code != stdhttp.StatusConflict {
		t.Fatalf("revoke without reason: status = %d, want 409", rec.Code)
	}
	rec = call(h.Revoke, map[string]any{"reason": "returned early"})
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("revoke status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != delDomain.StatusRevoked {
		t.Fatalf("status = %s, want revoked", got.Status)
	}
}

func TestGetDelegation_NotFound(t *testing.T) {
	e := newEchoWithValidator()
	h := NewDelegationHandler(newEngine(t).delegationUC)

	req := httptest.NewRequest(stdhttp.MethodGet, "/delegations/:delegation_id", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("delegation_id")
	c.SetParamValues("eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")
	if err := h.Get(c); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
