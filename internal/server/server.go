// Package server is the thin HTTP surface over the claim pipeline. It parses
// the upload form, invokes Submit and renders the outcome; no decision logic
// lives here.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/maverickins/claims-intake/internal/bootstrap/config"
	"github.com/maverickins/claims-intake/internal/bootstrap/logging"
	"github.com/maverickins/claims-intake/internal/domain/claim"
	"github.com/maverickins/claims-intake/internal/errs"
	"github.com/maverickins/claims-intake/internal/ports"
	"github.com/maverickins/claims-intake/internal/usecase/pipeline"
)

const (
	maxUploadBytes = 10 << 20
	dateLayout     = "2006-01-02"
)

type Server struct {
	svc  *pipeline.Service
	addr string
}

func New(cfg config.ServerConfig, svc *pipeline.Service) *Server {
	return &Server{
		svc:  svc,
		addr: cfg.Addr,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/claims", s.handleSubmit)
		r.Get("/claims", s.handleList)
		r.Get("/claims/{recordID}", s.handleGet)
		r.Get("/policies/{policyNumber}", s.handlePolicyLookup)
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logging.Info(ctx, "http server started", slog.String("addr", s.addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errs.Wrap(err, "shutdown http server")
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errs.Wrap(err, "serve http")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sub, err := parseSubmission(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	out, err := s.svc.Submit(r.Context(), sub)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, outcomeResponse(out))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	filter := ports.RecordFilter{
		PolicyNumber: r.URL.Query().Get("policy_number"),
		ApprovedOnly: r.URL.Query().Get("approved_only") == "true",
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		filter.Limit = limit
	}

	records, err := s.svc.ListRecords(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	items := make([]recordItem, 0, len(records))
	for _, rec := range records {
		items = append(items, recordResponse(rec))
	}
	writeJSON(w, http.StatusOK, listResponse{Records: items})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	recordID, err := strconv.ParseUint(chi.URLParam(r, "recordID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("record id must be numeric"))
		return
	}

	record, err := s.svc.GetRecord(r.Context(), recordID)
	if err != nil {
		if errors.Is(err, claim.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse(record))
}

func (s *Server) handlePolicyLookup(w http.ResponseWriter, r *http.Request) {
	policyNumber := chi.URLParam(r, "policyNumber")

	valid, holder, hasHolder := s.svc.LookupPolicy(r.Context(), policyNumber)
	resp := policyResponse{Valid: valid}
	if hasHolder {
		resp.Holder = &holderItem{
			Name:  holder.Name,
			Email: holder.Email,
			IBAN:  holder.IBAN,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseSubmission(r *http.Request) (claim.Submission, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return claim.Submission{}, errs.Wrap(err, "parse multipart form")
	}

	dateOfLoss, err := time.ParseInLocation(dateLayout, r.FormValue("date_of_loss"), time.UTC)
	if err != nil {
		return claim.Submission{}, errs.Wrap(err, "parse date_of_loss")
	}

	var photo []byte
	file, _, err := r.FormFile("photo")
	if err == nil {
		defer file.Close()
		photo, err = io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			return claim.Submission{}, errs.Wrap(err, "read photo")
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		return claim.Submission{}, errs.Wrap(err, "read photo field")
	}

	return claim.Submission{
		PolicyNumber:  r.FormValue("policy_number"),
		ClaimantName:  r.FormValue("claimant_name"),
		ClaimantEmail: r.FormValue("claimant_email"),
		DateOfLoss:    dateOfLoss,
		Location:      r.FormValue("location"),
		Photo:         photo,
	}, nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, claim.ErrInvalidSubmission):
		return http.StatusBadRequest
	case errors.Is(err, claim.ErrAssessmentUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, claim.ErrPayoutFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
