package http

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uc "approval-engine/internal/usecase/request"

	"github.com/labstack/echo/v4"
)

func submitBody(amount float64) map[string]any {
	return map[string]any{
		"transaction_type": "purchase_order",
		"amount":           amount,
		"currency":         "INR",
	}
}

func doSubmit(t *testing.T, e *echo.Echo, h *RequestHandler, body any, actor string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(stdhttp.MethodPost, "/requests", mustJSON(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if actor != "" {
		req.Header.Set(actorHeader, actor)
	}
	rec := httptest.NewRecorder()
	if err := h.Submit(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	return rec
}

func TestSubmitRequest_Success(t *testing.T) {
	e := newEchoWithValidator()
	eng := newEngine(t)
	h := NewRequestHandler(eng.requestUC)

	rec := doSubmit(t, e, h, submitBody(50_000), tRequester)
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var got uc.RequestDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.Status != "pending" || got.CurrentLevel != 1 || len(got.Levels) != 1 {
		t.Fatalf("unexpected dto: %+v", got)
	}
	if got.Levels[0].ApproverPersonID != tApprover {
		t.Fatalf("level 1 approver = %s, want %s", got.Levels[0].ApproverPersonID, tApprover)
	}
}

func TestSubmitRequest_MissingActorHeader(t *testing.T) {
	e := newEchoWithValidator()
	h := NewRequestHandler(newEngine(t).requestUC)

	rec := doSubmit(t, e, h, submitBody(50_000), "")
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSubmitRequest_BindError(t *testing.T) {
	e := newEchoWithValidator()
	h := NewRequestHandler(newEngine(t).requestUC)

	req := httptest.NewRequest(stdhttp.MethodPost, "/requests", strings.NewReader(`{"amount":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(actorHeader, tRequester)
	rec := httptest.NewRecorder()
	if err := h.Submit(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSubmitRequest_ValidationError(t *testing.T) {
	e := newEchoWithValidator()
	h := NewRequestHandler(newEngine(t).requestUC)

	body := map[string]any{
		"transaction_type": "purchase_order",
		"amount":           50_000.123, // too many decimals
		"currency":         "RUPEES",   // not a 3-letter code
	}
	rec := doSubmit(t, e, h, body, tRequester)
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if !containsFieldMsg(er.Details, "Amount", "decimal") {
		t.Fatalf("missing amount detail: %+v", er.Details)
	}
	if !containsFieldMsg(er.Details, "Currency", "exactly 3") {
		t.Fatalf("missing currency detail: %+v", er.Details)
	}
}

func TestSubmitRequest_NoWorkflowMatch(t *testing.T) {
	e := newEchoWithValidator()
	h := NewRequestHandler(newEngine(t).requestUC)

	// above every tier's ceiling: a configuration gap, not a client retry
	rec := doSubmit(t, e, h, submitBody(150_000), tRequester)
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if !strings.Contains(er.Error, "no workflow") {
		t.Fatalf("error must name the gap: %q", er.Error)
	}
}

func doAct(t *testing.T, e *echo.Echo, h *RequestHandler, requestID, level, actor string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(stdhttp.MethodPost, "/requests/:request_id/levels/:level_order/act", mustJSON(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(actorHeader, actor)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("request_id", "level_order")
	c.SetParamValues(requestID, level)
	if err := h.Act(c); err != nil {
		t.Fatalf("Act error: %v", err)
	}
	return rec
}

func TestActRequest_ApproveAndTerminalConflict(t *testing.T) {
	e := newEchoWithValidator()
	eng := newEngine(t)
	h := NewRequestHandler(eng.requestUC)

	var created uc.RequestDTO
	rec := doSubmit(t, e, h, submitBody(50_000), tRequester)
	_ = json.Unmarshal(rec.Body.Bytes(), &created)

	rec = doAct(t, e, h, created.RequestID, "1", tApprover, map[string]any{"decision": "approved"})
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var got uc.RequestDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Status != "approved" {
		t.Fatalf("status = %s, want approved", got.Status)
	}

	// acting on a terminal request is a conflict
	rec = doAct(t, e, h, created.RequestID, "1", tApprover, map[string]any{"decision": "approved"})
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestActRequest_WrongActorForbidden(t *testing.T) {
	e := newEchoWithValidator()
	eng := newEngine(t)
	h := NewRequestHandler(eng.requestUC)

	var created uc.RequestDTO
	rec := doSubmit(t, e, h, submitBody(50_000), tRequester)
	_ = json.Unmarshal(rec.Body.Bytes(), &created)

	rec = doAct(t, e, h, created.RequestID, "1", tStranger, map[string]any{"decision": "approved"})
	if rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", rec.Code, rec.Body.String())
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if !strings.Contains(er.Error, tApprover) {
		t.Fatalf("response must name the current approver: %q", er.Error)
	}
}

func TestActRequest_UnknownDecisionRejected(t *testing.T) {
	e := newEchoWithValidator()
	eng := newEngine(t)
	h := NewRequestHandler(eng.requestUC)

	var created uc.RequestDTO
	rec := doSubmit(t, e, h, submitBody(50_000), tRequester)
	_ = json.Unmarshal(rec.Body.Bytes(), &created)

	rec = doAct(t, e, h, created.RequestID, "1", tApprover, map[string]any{"decision": "maybe"})
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestRequestStatus_NotFound(t *testing.T) {
	e := newEchoWithValidator()
	h := NewRequestHandler(newEngine(t).requestUC)

	req := httptest.NewRequest(stdhttp.MethodGet, "/requests/:request_id", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("request_id")
	c.SetParamValues("eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")
	if err := h.Status(c); err != nil {
		t.Fatalf("Status error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCancelRequest_Flow(t *testing.T) {
	e := newEchoWithValidator()
	eng := newEngine(t)
	h := NewRequestHandler(eng.requestUC)

	var created uc.RequestDTO
	rec := doSubmit(t, e, h, submitBody(50_000), tRequester)
	_ = json.Unmarshal(rec.Body.Bytes(), &created)

	cancel := func(actor string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(stdhttp.MethodPost, "/requests/:request_id/cancel", nil)
		req.Header.Set(actorHeader, actor)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("request_id")
		c.SetParamValues(created.RequestID)
		if err := h.Cancel(c); err != nil {
			t.Fatalf("Cancel error: %v", err)
		}
		return rec
	}

	if rec := cancel(tStranger); rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	rec2 := cancel(tRequester)
	if rec2.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec2.Code, rec2.Body.String())
	}
	var got uc.RequestDTO
	_ = json.Unmarshal(rec2.Body.Bytes(), &got)
	if got.Status != "cancelled" {
		t.Fatalf("status = %s, want cancelled", got.Status)
	}
}
