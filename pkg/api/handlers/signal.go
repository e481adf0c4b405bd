// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sigbus/sigbus/pkg/api/middleware"
	"github.com/sigbus/sigbus/pkg/api/response"
	"github.com/sigbus/sigbus/pkg/dispatch"
	"github.com/sigbus/sigbus/pkg/logger"
	"github.com/sigbus/sigbus/pkg/metrics"
	"github.com/sigbus/sigbus/pkg/router"
	"github.com/sigbus/sigbus/pkg/sigerr"
	"github.com/sigbus/sigbus/pkg/signal"
)

// SignalHandler accepts CloudEvents-compatible signal envelopes over HTTP,
// routes each one against the current Router, and carries out whatever
// dispatch targets the match produced. Instructions a route contributes
// are returned to the caller rather than executed, since their
// interpretation belongs to whatever collaborator submitted the route.
type SignalHandler struct {
	router        *router.Router
	dispatcher    *dispatch.Dispatcher
	defaultSource string
	logger        logger.Logger
	metrics       *metrics.Manager
}

// NewSignalHandler builds a SignalHandler routing against rt and
// delivering via dispatcher. defaultSource populates Signal.Source for
// envelopes that omit it.
func NewSignalHandler(rt *router.Router, dispatcher *dispatch.Dispatcher, defaultSource string, log logger.Logger, m *metrics.Manager) *SignalHandler {
	return &SignalHandler{
		router:        rt,
		dispatcher:    dispatcher,
		defaultSource: defaultSource,
		logger:        log,
		metrics:       m,
	}
}

// instructionView mirrors router.Instruction for the JSON response, since
// Instruction's Args is already JSON-friendly.
type instructionView struct {
	Action string         `json:"action"`
	Args   map[string]any `json:"args,omitempty"`
}

// signalResponse reports what routing a signal produced: the resolved
// dispatch targets that were delivered and the instructions left for the
// caller to act on.
type signalResponse struct {
	ID           string            `json:"id"`
	Type         string            `json:"type"`
	Dispatched   []string          `json:"dispatched,omitempty"`
	Instructions []instructionView `json:"instructions,omitempty"`
}

// HandleSignal handles POST /api/v1/signals: decode, validate, route, and
// dispatch a single signal envelope.
func (h *SignalHandler) HandleSignal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var fields signal.Fields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "invalid request body", requestID)
		return
	}

	sig, err := signal.New(fields, h.defaultSource)
	if err != nil {
		h.logger.WarnContext(ctx, "signal validation failed", "error", err)
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, err.Error(), requestID)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordSignalSent("http", sig.Type)
	}

	handlersOut, err := h.router.Route(sig)
	if err != nil {
		h.handleRoutingError(ctx, w, sig, err, requestID)
		return
	}

	resp := signalResponse{ID: sig.ID, Type: sig.Type}
	var targets []signal.Target
	var instructions []instructionView

	for _, hd := range handlersOut {
		switch v := hd.(type) {
		case router.Dispatch:
			targets = append(targets, v.Target)
		case router.Instruction:
			instructions = append(instructions, instructionView{Action: v.Action, Args: v.Args})
		}
	}

	if len(targets) > 0 {
		spec := &signal.DispatchSpec{Targets: targets}
		if err := h.dispatcher.Dispatch(ctx, sig, spec); err != nil {
			if h.metrics != nil {
				h.metrics.RecordSignalFailed("http", sig.Type, "dispatch_error")
			}
			h.logger.ErrorContext(ctx, "dispatch failed", "signal_id", sig.ID, "error", err)
			response.Error(w, http.StatusBadGateway, response.ErrCodeServiceUnavailable, err.Error(), requestID)
			return
		}
		for _, t := range targets {
			resp.Dispatched = append(resp.Dispatched, t.Tag)
		}
	}

	if h.metrics != nil {
		h.metrics.RecordSignalReceived("http", sig.Type)
	}

	resp.Instructions = instructions
	response.JSON(w, http.StatusAccepted, resp)
}

func (h *SignalHandler) handleRoutingError(ctx context.Context, w http.ResponseWriter, sig *signal.Signal, err error, requestID string) {
	if h.metrics != nil {
		h.metrics.RecordSignalFailed("http", sig.Type, string(sigerr.KindOf(err)))
	}
	h.logger.WarnContext(ctx, "routing failed", "signal_id", sig.ID, "type", sig.Type, "error", err)
	switch sigerr.KindOf(err) {
	case sigerr.KindRouting:
		response.Error(w, http.StatusUnprocessableEntity, response.ErrCodeValidationFailed, err.Error(), requestID)
	case sigerr.KindProcessNotFound, sigerr.KindBusNotFound:
		response.Error(w, http.StatusNotFound, response.ErrCodeNotFound, err.Error(), requestID)
	default:
		response.Error(w, http.StatusInternalServerError, response.ErrCodeInternalServer, err.Error(), requestID)
	}
}
