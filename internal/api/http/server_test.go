package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/helpdesk-kit/ticket-lifecycle/internal/api/dto"
	httptransport "github.com/helpdesk-kit/ticket-lifecycle/internal/api/http"
	"github.com/helpdesk-kit/ticket-lifecycle/internal/api/http/handlers"
	"github.com/helpdesk-kit/ticket-lifecycle/internal/events"
	"github.com/helpdesk-kit/ticket-lifecycle/internal/observability"
	"github.com/helpdesk-kit/ticket-lifecycle/internal/persistence"
	"github.com/helpdesk-kit/ticket-lifecycle/internal/repository"
	"github.com/helpdesk-kit/ticket-lifecycle/internal/service"
)

func newTestApp(t *testing.T) (*fiber.App, *observability.Metrics) {
	t.Helper()
	repo := repository.NewMemoryTicketRepository()
	svc := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repo,
		Dispatcher: events.NewInMemoryDispatcher(),
	})

	app := fiber.New()
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), metrics, 5*time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler("ticket-lifecycle", "test", &persistence.Postgres{}, &persistence.Redis{}),
		Tickets: handlers.NewTicketsHandler(svc),
	})
	return app, metrics
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func decodeTicket(t *testing.T, raw []byte) dto.TicketResponse {
	t.Helper()
	var ticket dto.TicketResponse
	if err := json.Unmarshal(raw, &ticket); err != nil {
		t.Fatalf("decode ticket: %v (%s)", err, raw)
	}
	return ticket
}

func TestCreateTicketEndpoint(t *testing.T) {
	app, metrics := newTestApp(t)

	resp, raw := doJSON(t, app, http.MethodPost, "/tickets", dto.CreateTicketRequest{
		Topic: "Access issue",
		Text:  "Cannot log into the portal",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", resp.StatusCode, raw)
	}
	ticket := decodeTicket(t, raw)
	if ticket.ID == "" || ticket.Status != "New" {
		t.Fatalf("ticket = %+v", ticket)
	}
	if ticket.ResolutionText != nil || ticket.CancellationReason != nil {
		t.Fatal("side-effect fields must be null at creation")
	}
	if got := metrics.RequestTotal("/tickets", http.MethodPost, http.StatusCreated); got != 1 {
		t.Fatalf("request counter = %d, want 1", got)
	}
}

func TestCreateTicketValidation(t *testing.T) {
	app, metrics := newTestApp(t)

	resp, raw := doJSON(t, app, http.MethodPost, "/tickets", dto.CreateTicketRequest{
		Topic: "ab",
		Text:  "too short",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var errBody struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &errBody); err != nil {
		t.Fatalf("decode error: %v (%s)", err, raw)
	}
	if errBody.Error.Code != "VALIDATION_FAILED" {
		t.Fatalf("code = %s", errBody.Error.Code)
	}
	if _, ok := errBody.Error.Details["topic"]; !ok {
		t.Fatal("missing topic violation")
	}
	if _, ok := errBody.Error.Details["text"]; !ok {
		t.Fatal("missing text violation")
	}
	if got := metrics.ErrorTotal("/tickets", http.MethodPost, "VALIDATION_FAILED"); got != 1 {
		t.Fatalf("error counter = %d, want 1", got)
	}
}

func TestTakeUnknownTicketReturns404(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPut, "/tickets/123e4567-e89b-12d3-a456-426614174000/take", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestTakeMalformedIDReturns400(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPut, "/tickets/not-a-uuid/take", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestFullLifecycleOverHTTP(t *testing.T) {
	app, _ := newTestApp(t)

	_, raw := doJSON(t, app, http.MethodPost, "/tickets", dto.CreateTicketRequest{
		Topic: "Access issue",
		Text:  "Cannot log into the portal",
	})
	created := decodeTicket(t, raw)

	resp, raw := doJSON(t, app, http.MethodPut, fmt.Sprintf("/tickets/%s/take", created.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("take status = %d (%s)", resp.StatusCode, raw)
	}
	if ticket := decodeTicket(t, raw); ticket.Status != "InProgress" {
		t.Fatalf("status = %s, want InProgress", ticket.Status)
	}

	resp, raw = doJSON(t, app, http.MethodPut, fmt.Sprintf("/tickets/%s/complete", created.ID), dto.CompleteTicketRequest{
		ResolutionText: "Fixed by password reset",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete status = %d (%s)", resp.StatusCode, raw)
	}
	ticket := decodeTicket(t, raw)
	if ticket.Status != "Completed" || ticket.ResolutionText == nil || *ticket.ResolutionText != "Fixed by password reset" {
		t.Fatalf("ticket = %+v", ticket)
	}

	// cancelling a completed ticket conflicts
	resp, _ = doJSON(t, app, http.MethodPut, fmt.Sprintf("/tickets/%s/cancel", created.ID), dto.CancelTicketRequest{
		CancellationReason: "no longer needed",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("cancel status = %d, want 409", resp.StatusCode)
	}
}

func TestRangeQueryEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	for i := 0; i < 3; i++ {
		resp, raw := doJSON(t, app, http.MethodPost, "/tickets", dto.CreateTicketRequest{
			Topic: "Range topic",
			Text:  "Ticket created for the range query",
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create status = %d (%s)", resp.StatusCode, raw)
		}
	}

	start := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	end := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	resp, raw := doJSON(t, app, http.MethodGet, fmt.Sprintf("/tickets?startDate=%s&endDate=%s", start, end), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d (%s)", resp.StatusCode, raw)
	}
	var tickets []dto.TicketResponse
	if err := json.Unmarshal(raw, &tickets); err != nil {
		t.Fatalf("decode list: %v (%s)", err, raw)
	}
	if len(tickets) != 3 {
		t.Fatalf("len = %d, want 3", len(tickets))
	}

	// inverted range: empty array, still 200
	resp, raw = doJSON(t, app, http.MethodGet, fmt.Sprintf("/tickets?startDate=%s&endDate=%s", end, start), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("inverted status = %d", resp.StatusCode)
	}
	if err := json.Unmarshal(raw, &tickets); err != nil {
		t.Fatalf("decode inverted list: %v (%s)", err, raw)
	}
	if len(tickets) != 0 {
		t.Fatalf("inverted len = %d, want 0", len(tickets))
	}

	// missing dates: 400
	resp, _ = doJSON(t, app, http.MethodGet, "/tickets", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing dates status = %d, want 400", resp.StatusCode)
	}
}

func TestBulkCancelEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	var ids []string
	for i := 0; i < 2; i++ {
		_, raw := doJSON(t, app, http.MethodPost, "/tickets", dto.CreateTicketRequest{
			Topic: "Bulk topic",
			Text:  "Ticket created for the bulk cancel",
		})
		ids = append(ids, decodeTicket(t, raw).ID)
	}
	for _, id := range ids {
		if resp, raw := doJSON(t, app, http.MethodPut, fmt.Sprintf("/tickets/%s/take", id), nil); resp.StatusCode != http.StatusOK {
			t.Fatalf("take status = %d (%s)", resp.StatusCode, raw)
		}
	}

	resp, raw := doJSON(t, app, http.MethodDelete, "/tickets/cancel-in-progress", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d (%s)", resp.StatusCode, raw)
	}
	var result dto.BulkCancelResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode: %v (%s)", err, raw)
	}
	if result.AffectedCount != 2 {
		t.Fatalf("affectedCount = %d, want 2", result.AffectedCount)
	}
	if result.Message == "" {
		t.Fatal("message must be set")
	}

	// second call affects nothing
	_, raw = doJSON(t, app, http.MethodDelete, "/tickets/cancel-in-progress", nil)
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode second: %v (%s)", err, raw)
	}
	if result.AffectedCount != 0 {
		t.Fatalf("second affectedCount = %d, want 0", result.AffectedCount)
	}
}

func TestHealthEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/health/live", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("live status = %d", resp.StatusCode)
	}
	// unconfigured dependencies do not fail readiness
	resp, _ = doJSON(t, app, http.MethodGet, "/health/ready", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ready status = %d", resp.StatusCode)
	}
}
