package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ctateo21/homelead/internal/app"
	"github.com/ctateo21/homelead/internal/application/dto"
	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
)

const maxBodyBytes = 64 << 10

// WizardHandler exposes the wizard use cases over HTTP/JSON.
type WizardHandler struct {
	uc     *app.UseCases
	logger *slog.Logger
}

// NewWizardHandler creates the REST handler.
func NewWizardHandler(uc *app.UseCases, logger *slog.Logger) *WizardHandler {
	return &WizardHandler{uc: uc, logger: logger}
}

func (h *WizardHandler) submitStep(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.readPayload(w, r)
	if !ok {
		return
	}
	resp, err := h.uc.Submit.Execute(r.Context(), dto.SubmitStepRequest{
		SessionID: chi.URLParam(r, "id"),
		Step:      chi.URLParam(r, "step"),
		Payload:   payload,
	})
	h.respond(w, r, resp, err)
}

func (h *WizardHandler) saveDraft(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.readPayload(w, r)
	if !ok {
		return
	}
	resp, err := h.uc.Draft.Execute(r.Context(), dto.SaveDraftRequest{
		SessionID: chi.URLParam(r, "id"),
		Step:      chi.URLParam(r, "step"),
		Payload:   payload,
	})
	h.respond(w, r, resp, err)
}

func (h *WizardHandler) goBack(w http.ResponseWriter, r *http.Request) {
	resp, err := h.uc.Back.Execute(r.Context(), dto.GoBackRequest{SessionID: chi.URLParam(r, "id")})
	h.respond(w, r, resp, err)
}

func (h *WizardHandler) getSession(w http.ResponseWriter, r *http.Request) {
	resp, err := h.uc.Get.Execute(r.Context(), dto.GetSessionRequest{SessionID: chi.URLParam(r, "id")})
	h.respond(w, r, resp, err)
}

func (h *WizardHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	schedule, _ := strconv.ParseBool(r.URL.Query().Get("schedule"))
	resp, err := h.uc.Profile.Execute(r.Context(), dto.ComputeProfileRequest{
		SessionID:       chi.URLParam(r, "id"),
		IncludeSchedule: schedule,
	})
	h.respond(w, r, resp, err)
}

func (h *WizardHandler) verify(w http.ResponseWriter, r *http.Request) {
	resp, err := h.uc.Verify.Execute(r.Context(), dto.VerifyRequest{
		SessionID: chi.URLParam(r, "id"),
		Provider:  chi.URLParam(r, "provider"),
	})
	h.respond(w, r, resp, err)
}

func (h *WizardHandler) lookupAddress(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.uc.LookupAddress.Execute(r.Context(), dto.AddressLookupRequest{
		SessionID: q.Get("session"),
		Query:     q.Get("q"),
	})
	h.respond(w, r, resp, err)
}

func (h *WizardHandler) estimateValue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.uc.EstimateValue.Execute(r.Context(), dto.ValueEstimateRequest{
		SessionID: q.Get("session"),
		Address:   q.Get("address"),
		Zip:       q.Get("zip"),
	})
	h.respond(w, r, resp, err)
}

func (h *WizardHandler) estimateTax(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	verr := model.NewValidationError("tax-estimate")

	value, err := decimal.NewFromString(q.Get("value"))
	if err != nil {
		verr.Add("value", "must be a number")
	}
	homestead := false
	if raw := q.Get("homestead"); raw != "" {
		if homestead, err = strconv.ParseBool(raw); err != nil {
			verr.Add("homestead", "must be true or false")
		}
	}
	if verr.HasErrors() {
		h.respond(w, r, nil, verr)
		return
	}

	resp, err := h.uc.EstimateTax.Execute(r.Context(), dto.TaxEstimateRequest{
		Address:   q.Get("address"),
		Value:     value,
		Homestead: homestead,
	})
	h.respond(w, r, resp, err)
}

// readPayload reads the step payload from the request body. An empty body
// is treated as an empty object.
func (h *WizardHandler) readPayload(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large", nil)
		return nil, false
	}
	if len(body) == 0 {
		return json.RawMessage("{}"), true
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON", nil)
		return nil, false
	}
	return body, true
}

func (h *WizardHandler) respond(w http.ResponseWriter, r *http.Request, resp any, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	var verr *model.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusUnprocessableEntity, verr.Error(), verr.Fields)
		return
	}

	status := StatusCode(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, status, "internal error", nil)
		return
	}
	writeError(w, status, err.Error(), nil)
}

// StatusCode maps a use-case error onto an HTTP status.
func StatusCode(err error) int {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case port.IsProviderError(err):
		return http.StatusBadGateway
	case errors.Is(err, valueobject.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, valueobject.ErrUnknownStep),
		errors.Is(err, valueobject.ErrStepNotInTrack):
		return http.StatusBadRequest
	case errors.Is(err, valueobject.ErrStepNotReachable),
		errors.Is(err, valueobject.ErrTerminalStep),
		errors.Is(err, valueobject.ErrServiceTypeMismatch),
		errors.Is(err, valueobject.ErrNotMortgageTrack),
		errors.Is(err, valueobject.ErrNoPreviousStep):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string, fields map[string]string) {
	writeJSON(w, status, errorBody{Error: msg, Fields: fields})
}
