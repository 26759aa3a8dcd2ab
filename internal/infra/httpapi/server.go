// Package httpapi exposes the status and notification engine over a small
// JSON API consumed by the web UI.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"supplychain_backoffice/internal/app"
	"supplychain_backoffice/internal/domain/alert"
	"supplychain_backoffice/internal/domain/shipment"

	"github.com/sirupsen/logrus"
)

// StatusService defines the status operations consumed by this API.
type StatusService interface {
	Status(ctx context.Context, shipmentID int64) (*shipment.StatusView, error)
	SetOverride(ctx context.Context, shipmentID int64, status shipment.Status, reason, actor string) (*shipment.StatusView, error)
	ClearOverride(ctx context.Context, shipmentID int64) (*shipment.StatusView, error)
}

// CheckService defines the scan trigger consumed by this API.
type CheckService interface {
	RunCheck(ctx context.Context) (*app.CheckResult, error)
}

type Server struct {
	statuses StatusService
	checks   CheckService
	alerts   alert.Repository
	log      *logrus.Logger
}

func NewServer(statuses StatusService, checks CheckService, alerts alert.Repository, log *logrus.Logger) *Server {
	return &Server{statuses: statuses, checks: checks, alerts: alerts, log: log}
}

// RegisterRoutes wires the API routes into the provided mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /shipments/{id}/status", s.handleStatus)
	mux.HandleFunc("POST /shipments/{id}/override", s.handleSetOverride)
	mux.HandleFunc("POST /shipments/{id}/clear-override", s.handleClearOverride)
	mux.HandleFunc("POST /notifications/check", s.handleCheck)
	mux.HandleFunc("GET /notifications", s.handleListNotifications)
}

// Handler returns the fully routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

type statusResponse struct {
	ShipmentID   int64  `json:"shipment_id"`
	SerialNumber string `json:"serial_number"`
	Status       string `json:"status"`
	Reason       string `json:"reason"`

	Overridden   bool       `json:"overridden"`
	OverriddenBy string     `json:"overridden_by,omitempty"`
	OverriddenAt *time.Time `json:"overridden_at,omitempty"`

	DerivedStatus string    `json:"derived_status"`
	DerivedReason string    `json:"derived_reason"`
	CalculatedAt  time.Time `json:"calculated_at"`
}

func toStatusResponse(v *shipment.StatusView) statusResponse {
	return statusResponse{
		ShipmentID:    v.ShipmentID,
		SerialNumber:  v.SerialNumber,
		Status:        string(v.Status),
		Reason:        v.Reason,
		Overridden:    v.Overridden,
		OverriddenBy:  v.OverriddenBy,
		OverriddenAt:  v.OverriddenAt,
		DerivedStatus: string(v.DerivedStatus),
		DerivedReason: v.DerivedReason,
		CalculatedAt:  v.CalculatedAt,
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := shipmentID(w, r)
	if !ok {
		return
	}
	view, err := s.statuses.Status(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toStatusResponse(view))
}

type overrideRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
	SetBy  string `json:"set_by"`
}

func (s *Server) handleSetOverride(w http.ResponseWriter, r *http.Request) {
	id, ok := shipmentID(w, r)
	if !ok {
		return
	}
	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, &app.ValidationError{Msg: "invalid request body"})
		return
	}
	view, err := s.statuses.SetOverride(r.Context(), id, shipment.Status(req.Status), req.Reason, req.SetBy)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toStatusResponse(view))
}

func (s *Server) handleClearOverride(w http.ResponseWriter, r *http.Request) {
	id, ok := shipmentID(w, r)
	if !ok {
		return
	}
	view, err := s.statuses.ClearOverride(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toStatusResponse(view))
}

type checkResponse struct {
	Status  string `json:"status"`
	Created int    `json:"created"`
	Scanned int    `json:"scanned"`
	Skipped int    `json:"skipped"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	result, err := s.checks.RunCheck(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	status := "ok"
	if result.Skipped > 0 {
		status = "partial"
	}
	s.writeJSON(w, http.StatusOK, checkResponse{
		Status:  status,
		Created: result.Created,
		Scanned: result.Scanned,
		Skipped: result.Skipped,
	})
}

type notificationResponse struct {
	ID         string    `json:"id"`
	ShipmentID int64     `json:"shipment_id"`
	RuleID     string    `json:"rule_id"`
	Severity   string    `json:"severity"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	var (
		notifications []*alert.Notification
		err           error
	)
	if v := r.URL.Query().Get("shipment_id"); v != "" {
		id, parseErr := strconv.ParseInt(v, 10, 64)
		if parseErr != nil {
			s.writeError(w, &app.ValidationError{Msg: "invalid shipment_id"})
			return
		}
		notifications, err = s.alerts.ListActiveByShipment(r.Context(), id)
	} else {
		notifications, err = s.alerts.ListActive(r.Context())
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, notificationResponse{
			ID:         n.ID.String(),
			ShipmentID: n.ShipmentID,
			RuleID:     string(n.RuleID),
			Severity:   string(n.Severity),
			Message:    n.Message,
			CreatedAt:  n.CreatedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func shipmentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, `{"error":"invalid shipment id"}`, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		validationErr *app.ValidationError
		notFoundErr   *app.NotFoundError
	)
	code := http.StatusInternalServerError
	switch {
	case errors.As(err, &validationErr):
		code = http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		code = http.StatusNotFound
	default:
		s.log.WithError(err).Error("Request failed")
	}
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}
