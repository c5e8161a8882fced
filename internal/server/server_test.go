package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/maverickins/claims-intake/internal/bootstrap/config"
	"github.com/maverickins/claims-intake/internal/domain/claim"
	"github.com/maverickins/claims-intake/internal/infrastructure/payments"
	"github.com/maverickins/claims-intake/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "github.com/maverickins/claims-intake/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "github.com/maverickins/claims-intake/internal/infrastructure/persistence/sqlite/uow"
	"github.com/maverickins/claims-intake/internal/infrastructure/policy"
	"github.com/maverickins/claims-intake/internal/infrastructure/vision"
	"github.com/maverickins/claims-intake/internal/usecase/pipeline"
)

type stubWeather struct {
	hours []claim.HourlyObservation
}

func (s stubWeather) Lookup(_ context.Context, _ string, _ time.Time) ([]claim.HourlyObservation, error) {
	return s.hours, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.ClaimRecord{}); err != nil {
		t.Fatalf("migrate schema: %v", err)
	}

	registry := policy.NewStaticRegistry(config.PolicyConfig{
		ValidNumbers: []string{"DEMO-12345"},
		MinLength:    5,
		Holders: map[string]config.HolderConfig{
			"DEMO-12345": {Name: "Anna Keller", Email: "anna@example.com"},
		},
	})

	svc := pipeline.NewService(
		registry,
		vision.NewHeuristicEstimator(),
		stubWeather{hours: []claim.HourlyObservation{{Conditions: []string{"Hail"}}}},
		payments.NewSandboxGateway(),
		sqliterepo.NewAuditRepository(db),
		sqliteuow.NewUnitOfWork(db),
		nil,
		pipeline.Config{
			Bounds: claim.EstimateBounds{
				Min: decimal.NewFromInt(500),
				Max: decimal.NewFromInt(5000),
			},
			ApprovalThreshold: decimal.NewFromInt(5000),
		},
	)

	return New(config.ServerConfig{Addr: ":0"}, svc).Router()
}

func claimForm(t *testing.T, policyNumber string, photoBytes int) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fields := map[string]string{
		"policy_number":  policyNumber,
		"claimant_name":  "Anna Keller",
		"claimant_email": "anna@example.com",
		"date_of_loss":   "2025-06-01",
		"location":       "8001",
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if photoBytes > 0 {
		fw, err := mw.CreateFormFile("photo", "damage.jpg")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(bytes.Repeat([]byte{0x1}, photoBytes)); err != nil {
			t.Fatalf("write photo: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, mw.FormDataContentType()
}

func TestSubmitEndpointApproves(t *testing.T) {
	router := newTestRouter(t)

	// 1 KiB photo scores as hail, which the stubbed weather corroborates.
	body, contentType := claimForm(t, "DEMO-12345", 1024)
	req := httptest.NewRequest(http.MethodPost, "/api/claims", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/claims status = %d body = %s", rec.Code, rec.Body)
	}

	var out outcomeItem
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.State != string(claim.StateDone) || !out.Approved {
		t.Fatalf("outcome = %+v", out)
	}
	if !strings.HasPrefix(out.TransactionID, "re_sandbox_") {
		t.Fatalf("transaction id = %q", out.TransactionID)
	}
	if out.RecordID == 0 {
		t.Fatalf("record id missing in outcome")
	}

	// The audit row is readable back through the API.
	getReq := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/claims/%d", out.RecordID), nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)
	if getRec.Code != http.StatusOK {
		t.Fatalf("GET /api/claims/{id} status = %d", getRec.Code)
	}
}

func TestSubmitEndpointRejectsUnknownPolicy(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := claimForm(t, "UNKNOWN-000", 1024)
	req := httptest.NewRequest(http.MethodPost, "/api/claims", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/claims status = %d", rec.Code)
	}

	var out outcomeItem
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.State != string(claim.StateRejected) || out.Approved {
		t.Fatalf("outcome = %+v", out)
	}
	if out.RecordID != 0 {
		t.Fatalf("rejected claim produced record id %d", out.RecordID)
	}
}

func TestSubmitEndpointMissingPhoto(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := claimForm(t, "DEMO-12345", 0)
	req := httptest.NewRequest(http.MethodPost, "/api/claims", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST /api/claims without photo status = %d", rec.Code)
	}
}

func TestPolicyLookupEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/policies/DEMO-12345", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp policyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Valid || resp.Holder == nil || resp.Holder.Name != "Anna Keller" {
		t.Fatalf("policy lookup = %+v", resp)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/policies/NOPE", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Valid {
		t.Fatalf("unknown policy reported valid")
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz status = %d", rec.Code)
	}
}
