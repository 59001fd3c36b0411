package api

import (
	"errors"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/execution"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/guard"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/history"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/runner"
	"github.com/rs/zerolog"
)

// ValidateRequest is a single-pass validation request: candidate text
// only, no generation loop.
type ValidateRequest struct {
	Candidate string `json:"candidate"`
}

// RunRequest drives the full generate-validate-retry loop.
type RunRequest struct {
	Prompt string `json:"prompt"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type Handler struct {
	guard   *guard.Guard
	caller  runner.ModelCaller
	archive *history.Archive
	logger  *zerolog.Logger
}

// NewHandler builds the HTTP surface. archive is optional; when set,
// history reads are served from the durable store instead of the
// in-process recorder.
func NewHandler(g *guard.Guard, caller runner.ModelCaller, archive *history.Archive, logger *zerolog.Logger) *Handler {
	return &Handler{
		guard:   g,
		caller:  caller,
		archive: archive,
		logger:  logger,
	}
}

func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{Status: "ok"})
}

// POST /api/v1/validate
func (h *Handler) Validate(req *restful.Request, resp *restful.Response) {
	var validateReq ValidateRequest
	if err := req.ReadEntity(&validateReq); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	ctx := req.Request.Context()
	outcome, err := h.guard.Validate(ctx, validateReq.Candidate)
	if err != nil {
		// Exception-policy aborts surface as 422 with the outcome's
		// failure detail; everything else is readable off the outcome.
		var abortErr *execution.AbortError
		if errors.As(err, &abortErr) {
			resp.WriteHeaderAndEntity(http.StatusUnprocessableEntity, outcome)
			return
		}
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Bool("passed", outcome.ValidationPassed).
		Msg("validation complete")

	resp.WriteHeaderAndEntity(http.StatusOK, outcome)
}

// POST /api/v1/run
func (h *Handler) Run(req *restful.Request, resp *restful.Response) {
	var runReq RunRequest
	if err := req.ReadEntity(&runReq); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	ctx := req.Request.Context()
	outcome, err := h.guard.Run(ctx, h.caller, runReq.Prompt)
	if err != nil {
		var abortErr *execution.AbortError
		var exhausted *runner.RetryExhaustedError
		switch {
		case errors.As(err, &abortErr), errors.As(err, &exhausted):
			resp.WriteHeaderAndEntity(http.StatusUnprocessableEntity, outcome)
		case errors.Is(err, runner.ErrTimeout):
			middleware.HandleError(resp, err, http.StatusGatewayTimeout)
		default:
			middleware.HandleError(resp, err, http.StatusInternalServerError)
		}
		return
	}

	h.logger.Info().
		Bool("passed", outcome.ValidationPassed).
		Msg("run complete")

	resp.WriteHeaderAndEntity(http.StatusOK, outcome)
}

// GET /api/v1/calls
func (h *Handler) ListCalls(req *restful.Request, resp *restful.Response) {
	if h.archive != nil {
		calls, err := h.archive.ListCalls(req.Request.Context(), 0)
		if err != nil {
			middleware.HandleError(resp, err, http.StatusInternalServerError)
			return
		}
		out := make([]models.Call, 0, len(calls))
		for _, c := range calls {
			out = append(out, *c)
		}
		resp.WriteHeaderAndEntity(http.StatusOK, out)
		return
	}

	calls := h.guard.Calls()
	out := make([]models.Call, 0, len(calls))
	for _, c := range calls {
		out = append(out, *c)
	}
	resp.WriteHeaderAndEntity(http.StatusOK, out)
}

// GET /api/v1/calls/{call_id}
func (h *Handler) GetCall(req *restful.Request, resp *restful.Response) {
	id := req.PathParameter("call_id")

	if call, ok := h.guard.Call(id); ok {
		resp.WriteHeaderAndEntity(http.StatusOK, call)
		return
	}
	// Calls finalized before a restart only exist in the archive.
	if h.archive != nil {
		if call, err := h.archive.GetCall(req.Request.Context(), id); err == nil {
			resp.WriteHeaderAndEntity(http.StatusOK, call)
			return
		}
	}
	middleware.HandleError(resp, errors.New("call not found"), http.StatusNotFound)
}
