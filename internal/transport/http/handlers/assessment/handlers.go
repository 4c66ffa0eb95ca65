package assessmenthandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"perfreview/internal/domain/assessment"
	"perfreview/internal/domain/audit"
	"perfreview/internal/domain/auth"
	"perfreview/internal/domain/catalog"
	"perfreview/internal/domain/scoring"
	"perfreview/internal/transport/http/api"
	"perfreview/internal/transport/http/middleware"
	"perfreview/internal/transport/http/shared"
)

const finalizeEndpoint = "assessment.finalize"

type Workflow interface {
	Catalog() *catalog.Catalog
	Load(ctx context.Context, employeeID, period string) (*assessment.Assessment, error)
	Get(ctx context.Context, employeeID, period string) (*assessment.Assessment, error)
	SaveDraft(ctx context.Context, employeeID, period string, inputs []assessment.ScoreInput) (*assessment.Assessment, error)
	Finalize(ctx context.Context, employeeID, period string) (*assessment.Assessment, error)
	SetEmployeeNote(ctx context.Context, employeeID, period, metricID, note string) (string, error)
	RatingForScore(score float64) scoring.Rating
	PeriodSummary(ctx context.Context, period string) (assessment.PeriodSummary, error)
}

type AuditLog interface {
	Record(ctx context.Context, actorID, action, entityType, entityID, requestID, ip string, before, after any) error
	List(ctx context.Context, filter audit.Filter, includeDetails bool, limit, offset int) ([]audit.Event, error)
}

type IdempotencyStore interface {
	Check(ctx context.Context, actorID, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, actorID, endpoint, key, requestHash string, response json.RawMessage) error
}

type EventCounter interface {
	Inc(event string)
}

type Handler struct {
	Service     Workflow
	Perms       middleware.PermissionStore
	Audit       AuditLog
	Idempotency IdempotencyStore
	Events      EventCounter
	Logger      *zap.Logger
	// FinalizeLimit wraps the finalize route, typically with a rate limiter.
	FinalizeLimit func(http.Handler) http.Handler
}

func NewHandler(service Workflow, perms middleware.PermissionStore, auditLog AuditLog, idem IdempotencyStore, events EventCounter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Service:     service,
		Perms:       perms,
		Audit:       auditLog,
		Idempotency: idem,
		Events:      events,
		Logger:      logger.Named("http.assessment"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	finalizeLimit := h.FinalizeLimit
	if finalizeLimit == nil {
		finalizeLimit = func(next http.Handler) http.Handler { return next }
	}

	r.Route("/assessments/{employeeID}/{period}", func(r chi.Router) {
		own := middleware.RequireOwnRecord("employeeID")
		r.With(middleware.RequirePermission(auth.PermAssessmentRead, h.Perms), own).Get("/", h.handleGetAssessment)
		r.With(middleware.RequirePermission(auth.PermAssessmentWrite, h.Perms)).Put("/draft", h.handleSaveDraft)
		r.With(middleware.RequirePermission(auth.PermAssessmentFinalize, h.Perms), finalizeLimit).Post("/finalize", h.handleFinalize)
		r.With(middleware.RequirePermission(auth.PermAssessmentNote, h.Perms), middleware.RequireSubject("employeeID")).Put("/notes/{metricID}", h.handleSetEmployeeNote)
		r.With(middleware.RequirePermission(auth.PermAssessmentRead, h.Perms), own).Get("/report.pdf", h.handleReport)
		r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/history", h.handleHistory)
	})
	r.With(middleware.RequirePermission(auth.PermAssessmentRead, h.Perms)).Get("/ratings", h.handleRating)
	r.With(middleware.RequirePermission(auth.PermAssessmentRead, h.Perms)).Get("/catalog/{role}", h.handleCatalog)
	r.With(middleware.RequirePermission(auth.PermSummaryRead, h.Perms)).Get("/periods/{period}/summary", h.handlePeriodSummary)
}

type scoreItem struct {
	MetricID    string  `json:"metricId" validate:"required,max=32"`
	Score       *int    `json:"score" validate:"omitempty,min=1,max=5"`
	ManagerNote *string `json:"managerNote" validate:"omitempty,max=4000"`
}

type saveDraftRequest struct {
	Scores []scoreItem `json:"scores" validate:"required,min=1,dive"`
}

type employeeNoteRequest struct {
	Note string `json:"note" validate:"max=4000"`
}

type outcome struct {
	Status     string  `json:"status"`
	FinalScore float64 `json:"finalScore"`
	Rating     string  `json:"rating"`
}

func outcomeOf(a *assessment.Assessment) outcome {
	return outcome{Status: a.Status, FinalScore: a.FinalScore, Rating: a.Rating.Label}
}

func (h *Handler) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	_, employeeID, period, ok := h.subject(w, r)
	if !ok {
		return
	}

	a, err := h.Service.Load(r.Context(), employeeID, period)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	user, employeeID, period, ok := h.subject(w, r)
	if !ok {
		return
	}

	var payload saveDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	inputs := make([]assessment.ScoreInput, 0, len(payload.Scores))
	for _, item := range payload.Scores {
		inputs = append(inputs, assessment.ScoreInput{
			MetricID:    strings.TrimSpace(item.MetricID),
			Score:       item.Score,
			ManagerNote: item.ManagerNote,
		})
	}

	a, err := h.Service.SaveDraft(r.Context(), employeeID, period, inputs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.record(r, user, audit.ActionDraftSaved, a.ID, nil, map[string]any{"edits": len(inputs), "result": outcomeOf(a)})
	h.count(audit.ActionDraftSaved)
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	user, employeeID, period, ok := h.subject(w, r)
	if !ok {
		return
	}

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	requestHash := middleware.RequestHash([]byte(employeeID + "/" + period))
	if idempotencyKey != "" && h.Idempotency != nil {
		stored, found, err := h.Idempotency.Check(r.Context(), user.UserID, finalizeEndpoint, idempotencyKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key reused for a different request", middleware.GetRequestID(r.Context()))
			return
		}
		if err != nil {
			h.Logger.Warn("idempotency check failed", zap.Error(err))
		}
		if found {
			api.Success(w, stored, middleware.GetRequestID(r.Context()))
			return
		}
	}

	a, err := h.Service.Finalize(r.Context(), employeeID, period)
	if err != nil {
		if errors.Is(err, assessment.ErrIncompleteScores) {
			h.count("assessment.finalize_refused")
		}
		h.writeError(w, r, err)
		return
	}
	h.record(r, user, audit.ActionFinalized, a.ID, map[string]string{"status": assessment.StatusDraft}, outcomeOf(a))
	h.count(audit.ActionFinalized)

	if idempotencyKey != "" && h.Idempotency != nil {
		payload, err := json.Marshal(a)
		if err != nil {
			h.Logger.Warn("finalize response marshal failed", zap.Error(err))
		} else if err := h.Idempotency.Save(r.Context(), user.UserID, finalizeEndpoint, idempotencyKey, requestHash, payload); err != nil {
			h.Logger.Warn("idempotency save failed", zap.Error(err))
		}
	}
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSetEmployeeNote(w http.ResponseWriter, r *http.Request) {
	user, employeeID, period, ok := h.subject(w, r)
	if !ok {
		return
	}
	metricID := chi.URLParam(r, "metricID")

	var payload employeeNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	assessmentID, err := h.Service.SetEmployeeNote(r.Context(), employeeID, period, metricID, payload.Note)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.record(r, user, audit.ActionEmployeeNote, assessmentID, nil, map[string]string{"metricId": metricID})
	h.count(audit.ActionEmployeeNote)
	api.Success(w, map[string]string{"metricId": metricID, "note": payload.Note}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	_, employeeID, period, ok := h.subject(w, r)
	if !ok {
		return
	}

	a, err := h.Service.Load(r.Context(), employeeID, period)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := assessment.RenderReport(&buf, a); err != nil {
		h.Logger.Error("render report failed", zap.String("employeeId", employeeID), zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render report", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("assessment-%s-%s.pdf", employeeID, period)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	_, employeeID, period, ok := h.subject(w, r)
	if !ok {
		return
	}
	a, err := h.Service.Get(r.Context(), employeeID, period)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	events, err := h.Audit.List(r.Context(), audit.Filter{EntityType: audit.EntityAssessment, EntityID: a.ID}, true, page.Limit, page.Offset)
	if err != nil {
		h.Logger.Error("audit list failed", zap.String("assessmentId", a.ID), zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list history", middleware.GetRequestID(r.Context()))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	api.Success(w, events, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRating(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("score"))
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "score", Reason: "must be a number"}})
		return
	}
	api.Success(w, h.Service.RatingForScore(score), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	role := catalog.Role(chi.URLParam(r, "role"))
	cat := h.Service.Catalog()
	groups, err := cat.Groups(role)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "unknown_role", "role has no metric configuration", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"version": cat.Version(),
		"role":    role,
		"pillars": groups,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePeriodSummary(w http.ResponseWriter, r *http.Request) {
	period := strings.TrimSpace(chi.URLParam(r, "period"))
	summary, err := h.Service.PeriodSummary(r.Context(), period)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

// subject reads the caller and the assessment coordinates from the route.
func (h *Handler) subject(w http.ResponseWriter, r *http.Request) (auth.UserContext, string, string, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, "", "", false
	}
	employeeID := strings.TrimSpace(chi.URLParam(r, "employeeID"))
	period := strings.TrimSpace(chi.URLParam(r, "period"))
	v := shared.NewValidator()
	v.Required("employeeID", employeeID, "is required")
	v.Required("period", period, "is required")
	if len(period) > 16 {
		v.Add("period", "must be at most 16 characters")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return auth.UserContext{}, "", "", false
	}
	return user, employeeID, period, true
}

func (h *Handler) record(r *http.Request, user auth.UserContext, action, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, action, audit.EntityAssessment, entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after); err != nil {
		h.Logger.Warn("audit record failed", zap.String("action", action), zap.Error(err))
	}
}

func (h *Handler) count(event string) {
	if h.Events != nil {
		h.Events.Inc(event)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())

	var incomplete *assessment.IncompleteScoresError
	switch {
	case errors.As(err, &incomplete):
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "incomplete_scores", "every applicable metric must be scored before finalizing",
			map[string]any{"missing": incomplete.Missing, "metricIds": incomplete.MetricIDs()}, requestID)
	case errors.Is(err, assessment.ErrAlreadyFinalized):
		api.Fail(w, http.StatusConflict, "already_finalized", "assessment is already finalized", requestID)
	case errors.Is(err, assessment.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
	case errors.Is(err, assessment.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "assessment not found", requestID)
	case errors.Is(err, assessment.ErrNotReviewable):
		api.Fail(w, http.StatusUnprocessableEntity, "not_reviewable", "employee is not subject to performance review", requestID)
	case errors.Is(err, assessment.ErrScoreOutOfRange), errors.Is(err, assessment.ErrUnknownMetric):
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", err.Error(), nil, requestID)
	case errors.Is(err, assessment.ErrUnknownRole):
		h.Logger.Error("assessment role has no configuration", zap.String("requestId", requestID), zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "unknown_role", "role has no metric configuration", requestID)
	default:
		h.Logger.Error("assessment request failed", zap.String("path", r.URL.Path), zap.String("requestId", requestID), zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
}
