package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/maverickins/claims-intake/internal/domain/claim"
	"github.com/maverickins/claims-intake/internal/usecase/pipeline"
)

type outcomeItem struct {
	ClaimRef      string `json:"claim_ref"`
	State         string `json:"state"`
	Category      string `json:"category,omitempty"`
	Estimate      string `json:"estimate,omitempty"`
	WeatherOK     bool   `json:"weather_ok"`
	Approved      bool   `json:"approved"`
	Reason        string `json:"reason"`
	TransactionID string `json:"transaction_id,omitempty"`
	RecordID      uint64 `json:"record_id,omitempty"`
}

type recordItem struct {
	RecordID      uint64 `json:"record_id"`
	ClaimRef      string `json:"claim_ref"`
	PolicyNumber  string `json:"policy_number"`
	ClaimantName  string `json:"claimant_name"`
	ClaimantEmail string `json:"claimant_email"`
	DateOfLoss    string `json:"date_of_loss"`
	Location      string `json:"location"`
	Category      string `json:"category"`
	Estimate      string `json:"estimate"`
	WeatherOK     bool   `json:"weather_ok"`
	Approved      bool   `json:"approved"`
	Reason        string `json:"reason"`
	TransactionID string `json:"transaction_id,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type listResponse struct {
	Records []recordItem `json:"records"`
}

type holderItem struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	IBAN  string `json:"iban"`
}

type policyResponse struct {
	Valid  bool        `json:"valid"`
	Holder *holderItem `json:"holder,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func outcomeResponse(out pipeline.Outcome) outcomeItem {
	item := outcomeItem{
		ClaimRef:      out.ClaimRef,
		State:         string(out.State),
		WeatherOK:     out.WeatherOK,
		Approved:      out.Decision.Approved,
		Reason:        out.Decision.Reason,
		TransactionID: out.TransactionID,
		RecordID:      out.RecordID,
	}
	if out.Assessment.Category != "" {
		item.Category = out.Assessment.Category.String()
		item.Estimate = out.Assessment.Estimate.String()
	}
	return item
}

func recordResponse(rec claim.Record) recordItem {
	item := recordItem{
		RecordID:      rec.RecordID,
		ClaimRef:      rec.ClaimRef,
		PolicyNumber:  rec.PolicyNumber,
		ClaimantName:  rec.ClaimantName,
		ClaimantEmail: rec.ClaimantEmail,
		DateOfLoss:    rec.DateOfLoss.Format(dateLayout),
		Location:      rec.Location,
		Category:      rec.Category.String(),
		Estimate:      rec.Estimate.String(),
		WeatherOK:     rec.WeatherOK,
		Approved:      rec.Approved,
		Reason:        rec.Reason,
		CreatedAt:     rec.CreatedAt.Format(time.RFC3339),
	}
	if rec.TransactionID != nil {
		item.TransactionID = *rec.TransactionID
	}
	return item
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
