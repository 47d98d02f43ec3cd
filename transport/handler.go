// Package transport exposes the conversational pipeline over HTTP: a
// connect RPC procedure for Respond, a read-only session history endpoint,
// health, and Prometheus metrics.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/contextual-ai/converse/pipeline"
	"github.com/contextual-ai/converse/session"
)

// ChatServiceRespondProcedure is the connect route for the Respond RPC.
const ChatServiceRespondProcedure = "/converse.v1.ChatService/Respond"

// ClientOptions returns the connect options a client needs to call the
// ChatService procedures served by NewRouter.
func ClientOptions() []connect.ClientOption {
	return []connect.ClientOption{connect.WithCodec(jsonCodec{})}
}

// NewRouter builds the HTTP surface for a pipeline. A nil registry disables
// the /metrics endpoint.
func NewRouter(p *pipeline.Pipeline, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)

	respond := connect.NewUnaryHandler(
		ChatServiceRespondProcedure,
		func(ctx context.Context, req *connect.Request[RespondRequest]) (*connect.Response[RespondResponse], error) {
			reply, err := p.Respond(ctx, req.Msg.SessionID, req.Msg.Message)
			if err != nil {
				return nil, rpcError(err)
			}
			return connect.NewResponse(&RespondResponse{
				SessionID: req.Msg.SessionID,
				Reply:     reply,
			}), nil
		},
		connect.WithCodec(jsonCodec{}),
	)
	r.Handle(ChatServiceRespondProcedure, respond)

	r.Get("/v1/sessions/{id}/history", historyHandler(p))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if reg != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	return r
}

func historyHandler(p *pipeline.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Session ids are opaque and may contain any byte, so callers
		// percent-escape them in the path.
		id, err := url.PathUnescape(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "malformed session id", http.StatusBadRequest)
			return
		}

		turns, err := p.History(r.Context(), id)
		switch {
		case errors.Is(err, session.ErrUnknownSession):
			http.Error(w, "unknown session", http.StatusNotFound)
			return
		case errors.Is(err, session.ErrEmptySessionID):
			http.Error(w, "session id is empty", http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, "failed to load history", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(HistoryResponse{SessionID: id, Turns: turns})
	}
}

// rpcError maps pipeline and store errors onto connect codes.
func rpcError(err error) *connect.Error {
	switch {
	case errors.Is(err, session.ErrEmptySessionID):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, pipeline.ErrModelInvocation):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
