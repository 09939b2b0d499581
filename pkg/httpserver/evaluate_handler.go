package httpserver

import (
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/quantfeed/blockwatch/internal/alert"
	"github.com/quantfeed/blockwatch/internal/parser"
	"github.com/quantfeed/blockwatch/pkg/types"
	"go.uber.org/zap"
)

// DecisionJournal exposes recently evaluated decisions for the API without
// pulling the whole application package into the server.
type DecisionJournal interface {
	Recent(limit int) []*types.AlertDecision
}

// EvaluateHandler handles ad-hoc parse-and-evaluate requests. It runs the
// same parser and engine as the live feed pipeline, so a decision returned
// here is bit-identical to what the pipeline would have produced.
type EvaluateHandler struct {
	parser *parser.Parser
	engine *alert.Engine
	rules  alert.RuleSet
	hints  parser.HintSource
	logger *zap.Logger
}

// NewEvaluateHandler creates a new evaluate handler.
func NewEvaluateHandler(p *parser.Parser, e *alert.Engine, rules alert.RuleSet, hints parser.HintSource, logger *zap.Logger) *EvaluateHandler {
	if hints == nil {
		hints = parser.NoHints{}
	}
	return &EvaluateHandler{
		parser: p,
		engine: e,
		rules:  rules,
		hints:  hints,
		logger: logger,
	}
}

// EvaluateResponse bundles the parse result and the decision for one message.
type EvaluateResponse struct {
	Trade    *types.ParsedTrade   `json:"trade,omitempty"`
	Decision *types.AlertDecision `json:"decision"`
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleParse handles POST /api/parse requests carrying a raw feed message.
func (h *EvaluateHandler) HandleParse(w http.ResponseWriter, r *http.Request) {
	var msg types.RawMessage
	err := json.NewDecoder(r.Body).Decode(&msg)
	if err != nil {
		h.writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if msg.Text == "" {
		h.writeError(w, "missing required field: text", http.StatusBadRequest)
		return
	}

	h.logger.Debug("parse-request-received", zap.Int64("message-id", msg.ID))

	result := h.parser.Parse(msg.Text, h.hints)
	decision := h.engine.Evaluate(msg, result.Trade, h.rules)

	response := EvaluateResponse{
		Trade:    result.Trade,
		Decision: decision,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	err = json.NewEncoder(w).Encode(response)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func (h *EvaluateHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{Error: message}
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		h.logger.Error("failed-to-encode-error-response", zap.Error(err))
	}
}

// DecisionsHandler serves the recent-decision journal.
type DecisionsHandler struct {
	journal DecisionJournal
	logger  *zap.Logger
}

// NewDecisionsHandler creates a new decisions handler.
func NewDecisionsHandler(journal DecisionJournal, logger *zap.Logger) *DecisionsHandler {
	return &DecisionsHandler{
		journal: journal,
		logger:  logger,
	}
}

// DecisionsResponse represents the HTTP response for recent decisions.
type DecisionsResponse struct {
	Decisions []*types.AlertDecision `json:"decisions"`
	Count     int                    `json:"count"`
}

const defaultDecisionsLimit = 50

// HandleDecisions handles GET /api/decisions?limit=<n> requests.
func (h *DecisionsHandler) HandleDecisions(w http.ResponseWriter, r *http.Request) {
	limit := defaultDecisionsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	decisions := h.journal.Recent(limit)
	if decisions == nil {
		decisions = []*types.AlertDecision{}
	}

	response := DecisionsResponse{
		Decisions: decisions,
		Count:     len(decisions),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

func (h *DecisionsHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{Error: message}
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		h.logger.Error("failed-to-encode-error-response", zap.Error(err))
	}
}
