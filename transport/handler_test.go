package transport_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/contextual-ai/converse/core/protocol"
	"github.com/contextual-ai/converse/pipeline"
	"github.com/contextual-ai/converse/provider"
	"github.com/contextual-ai/converse/transport"
)

type staticModel struct {
	reply string
	err   error
}

func (m staticModel) Complete(_ context.Context, _ []protocol.Turn) (string, error) {
	return m.reply, m.err
}

func newTestServer(t *testing.T, model provider.Model) *httptest.Server {
	t.Helper()

	cfg := pipeline.DefaultConfig()
	cfg.Observer = "noop"

	p, err := pipeline.New(&cfg, pipeline.WithModel(model))
	if err != nil {
		t.Fatalf("pipeline.New failed: %v", err)
	}

	server := httptest.NewServer(transport.NewRouter(p, prometheus.NewRegistry()))
	t.Cleanup(server.Close)
	return server
}

func respondClient(server *httptest.Server) *connect.Client[transport.RespondRequest, transport.RespondResponse] {
	return connect.NewClient[transport.RespondRequest, transport.RespondResponse](
		server.Client(),
		server.URL+transport.ChatServiceRespondProcedure,
		transport.ClientOptions()...,
	)
}

func TestRespondRPC(t *testing.T) {
	server := newTestServer(t, staticModel{reply: "hi there"})
	client := respondClient(server)

	resp, err := client.CallUnary(context.Background(), connect.NewRequest(&transport.RespondRequest{
		SessionID: "user_123",
		Message:   "Hello! How are you?",
	}))
	if err != nil {
		t.Fatalf("CallUnary failed: %v", err)
	}

	if resp.Msg.Reply != "hi there" {
		t.Errorf("got reply %q, want %q", resp.Msg.Reply, "hi there")
	}
	if resp.Msg.SessionID != "user_123" {
		t.Errorf("got session id %q, want %q", resp.Msg.SessionID, "user_123")
	}
}

func TestRespondRPC_EmptySessionID(t *testing.T) {
	server := newTestServer(t, staticModel{reply: "ok"})
	client := respondClient(server)

	_, err := client.CallUnary(context.Background(), connect.NewRequest(&transport.RespondRequest{
		Message: "hello",
	}))
	if err == nil {
		t.Fatal("expected error for empty session id, got nil")
	}
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("got code %v, want %v", connect.CodeOf(err), connect.CodeInvalidArgument)
	}
}

func TestRespondRPC_ModelFailure(t *testing.T) {
	server := newTestServer(t, staticModel{err: errors.New("upstream down")})
	client := respondClient(server)

	_, err := client.CallUnary(context.Background(), connect.NewRequest(&transport.RespondRequest{
		SessionID: "user_123",
		Message:   "hello",
	}))
	if err == nil {
		t.Fatal("expected error for model failure, got nil")
	}
	if connect.CodeOf(err) != connect.CodeUnavailable {
		t.Errorf("got code %v, want %v", connect.CodeOf(err), connect.CodeUnavailable)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	server := newTestServer(t, staticModel{reply: "R1"})
	client := respondClient(server)
	ctx := context.Background()

	if _, err := client.CallUnary(ctx, connect.NewRequest(&transport.RespondRequest{
		SessionID: "user_123",
		Message:   "Hello! How are you?",
	})); err != nil {
		t.Fatalf("CallUnary failed: %v", err)
	}

	resp, err := server.Client().Get(server.URL + "/v1/sessions/user_123/history")
	if err != nil {
		t.Fatalf("history request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}

	var history transport.HistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if history.SessionID != "user_123" {
		t.Errorf("got session id %q, want %q", history.SessionID, "user_123")
	}
	if len(history.Turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(history.Turns))
	}
	if history.Turns[0].Role != protocol.RoleHuman || history.Turns[1].Role != protocol.RoleAI {
		t.Errorf("got roles %q,%q, want human,ai", history.Turns[0].Role, history.Turns[1].Role)
	}
}

func TestHistoryEndpoint_EscapedSessionID(t *testing.T) {
	server := newTestServer(t, staticModel{reply: "ok"})
	client := respondClient(server)
	ctx := context.Background()

	// Session ids are opaque, so a slash is a legal id byte. The history
	// path addresses such ids with percent-escaping.
	if _, err := client.CallUnary(ctx, connect.NewRequest(&transport.RespondRequest{
		SessionID: "tenant/42",
		Message:   "hello",
	})); err != nil {
		t.Fatalf("CallUnary failed: %v", err)
	}

	resp, err := server.Client().Get(server.URL + "/v1/sessions/tenant%2F42/history")
	if err != nil {
		t.Fatalf("history request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}

	var history transport.HistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if history.SessionID != "tenant/42" {
		t.Errorf("got session id %q, want %q", history.SessionID, "tenant/42")
	}
	if len(history.Turns) != 2 {
		t.Errorf("got %d turns, want 2", len(history.Turns))
	}
}

func TestHistoryEndpoint_UnknownSession(t *testing.T) {
	server := newTestServer(t, staticModel{reply: "ok"})

	resp, err := server.Client().Get(server.URL + "/v1/sessions/never_seen/history")
	if err != nil {
		t.Fatalf("history request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("got status %d, want 404", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t, staticModel{reply: "ok"})

	resp, err := server.Client().Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("got status %d, want 200", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(t, staticModel{reply: "ok"})

	resp, err := server.Client().Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("got status %d, want 200", resp.StatusCode)
	}
}

func TestRequestIDHeader(t *testing.T) {
	server := newTestServer(t, staticModel{reply: "ok"})

	resp, err := server.Client().Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("response is missing a minted X-Request-Id")
	}

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/healthz", nil)
	req.Header.Set("X-Request-Id", "caller-supplied")
	resp2, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp2.Body.Close()

	if got := resp2.Header.Get("X-Request-Id"); got != "caller-supplied" {
		t.Errorf("got request id %q, want the caller-supplied value echoed", got)
	}
}
