package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/njchilds90/algebra"
)

var tracer = otel.Tracer("github.com/njchilds90/algebra/internal/server")

// calculateRequest is the wire form of algebra.Request.
type calculateRequest struct {
	Expression string `json:"expression" validate:"required"`
	Operation  string `json:"operation" validate:"required,oneof=evaluate simplify expand factor solve graph"`
	Variable   string `json:"variable" validate:"omitempty,ident"`
	Steps      bool   `json:"steps"`
}

type calculateResponse struct {
	Result string   `json:"result"`
	Steps  []string `json:"steps,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// POST /api/calculate
func (s *Server) calculate(c *gin.Context) {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	var req calculateRequest
	if err := dec.Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}
	if dec.More() {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid JSON: trailing data"})
		return
	}
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: describeValidation(err)})
		return
	}

	ctx, span := tracer.Start(c.Request.Context(), "algebra.calculate",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("algebra.operation", req.Operation),
			attribute.Bool("algebra.steps", req.Steps),
			attribute.Int("algebra.expression_length", len(req.Expression)),
		))
	defer span.End()

	start := time.Now()
	resp, err := s.calc.Calculate(ctx, algebra.Request{
		Expression: req.Expression,
		Operation:  algebra.Operation(req.Operation),
		Variable:   req.Variable,
		Steps:      req.Steps,
	})
	elapsed := time.Since(start)

	if err != nil {
		kind := algebra.ErrorKind(err)
		s.metrics.RecordRequest(req.Operation, kind, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
		var be *algebra.BudgetError
		if errors.As(err, &be) {
			s.metrics.RecordBudget(be.What)
			s.logger.Warn("budget exceeded",
				"request_id", requestIDFrom(c),
				"operation", req.Operation,
				"what", be.What,
				"trace_id", span.SpanContext().TraceID().String())
		}
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: kind})
		return
	}
	s.metrics.RecordRequest(req.Operation, "ok", elapsed)
	span.SetStatus(codes.Ok, "")

	out := calculateResponse{Result: resp.Result}
	if req.Steps {
		out.Steps = resp.Steps
		if out.Steps == nil {
			out.Steps = []string{}
		}
	}
	c.JSON(http.StatusOK, out)
}

// GET /health
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// GET /schema
func (s *Server) schema(c *gin.Context) {
	c.JSON(http.StatusOK, Schema())
}
