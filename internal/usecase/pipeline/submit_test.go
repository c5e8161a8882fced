package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/maverickins/claims-intake/internal/domain/claim"
	"github.com/maverickins/claims-intake/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "github.com/maverickins/claims-intake/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "github.com/maverickins/claims-intake/internal/infrastructure/persistence/sqlite/uow"
	"github.com/maverickins/claims-intake/internal/ports"
)

var testNow = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

type fakeRegistry struct {
	valid map[string]bool
	calls int
}

func (f *fakeRegistry) IsValid(_ context.Context, policyNumber string) bool {
	f.calls++
	return f.valid[policyNumber]
}

func (f *fakeRegistry) Holder(_ context.Context, _ string) (ports.PolicyHolder, bool) {
	return ports.PolicyHolder{}, false
}

type fakeEstimator struct {
	category string
	estimate decimal.Decimal
	err      error
	calls    int
}

func (f *fakeEstimator) Score(_ context.Context, _ []byte) (string, decimal.Decimal, error) {
	f.calls++
	if f.err != nil {
		return "", decimal.Zero, f.err
	}
	return f.category, f.estimate, nil
}

type fakeWeather struct {
	hours []claim.HourlyObservation
	err   error
	calls int
}

func (f *fakeWeather) Lookup(_ context.Context, _ string, _ time.Time) ([]claim.HourlyObservation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.hours, nil
}

type fakeGateway struct {
	txID  string
	err   error
	calls int
}

func (f *fakeGateway) Refund(_ context.Context, req ports.RefundRequest) (string, error) {
	f.calls++
	if !req.Amount.IsPositive() {
		return "", fmt.Errorf("non-positive amount %s", req.Amount)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.txID, nil
}

type fakeNotifier struct {
	events []ports.OutcomeEvent
	err    error
}

func (f *fakeNotifier) Publish(_ context.Context, event ports.OutcomeEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func rainyHours() []claim.HourlyObservation {
	return []claim.HourlyObservation{
		{PrecipMM: decimal.Zero, Conditions: []string{"Clouds"}},
		{PrecipMM: decimal.NewFromFloat(1.2), Conditions: []string{"Rain"}},
	}
}

func testSubmission() claim.Submission {
	return claim.Submission{
		PolicyNumber:  "DEMO-12345",
		ClaimantName:  "Anna Keller",
		ClaimantEmail: "anna@example.com",
		DateOfLoss:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Location:      "8001",
		Photo:         []byte{0xff, 0xd8, 0xff},
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.ClaimRecord{}); err != nil {
		t.Fatalf("migrate schema: %v", err)
	}
	return db
}

func testConfig() Config {
	return Config{
		Bounds: claim.EstimateBounds{
			Min: decimal.NewFromInt(500),
			Max: decimal.NewFromInt(5000),
		},
		ApprovalThreshold: decimal.NewFromInt(5000),
	}
}

type serviceDeps struct {
	registry  *fakeRegistry
	estimator *fakeEstimator
	weather   *fakeWeather
	gateway   *fakeGateway
	notifier  *fakeNotifier
	db        *gorm.DB
}

func newTestService(t *testing.T, cfg Config) (*Service, *serviceDeps) {
	t.Helper()

	deps := &serviceDeps{
		registry:  &fakeRegistry{valid: map[string]bool{"DEMO-12345": true}},
		estimator: &fakeEstimator{category: "rain_damage", estimate: decimal.NewFromInt(1200)},
		weather:   &fakeWeather{hours: rainyHours()},
		gateway:   &fakeGateway{txID: "re_test_123"},
		notifier:  &fakeNotifier{},
		db:        newTestDB(t),
	}

	svc := NewService(
		deps.registry,
		deps.estimator,
		deps.weather,
		deps.gateway,
		sqliterepo.NewAuditRepository(deps.db),
		sqliteuow.NewUnitOfWork(deps.db),
		deps.notifier,
		cfg,
	)
	svc.now = func() time.Time { return testNow }
	return svc, deps
}

func countRecords(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&model.ClaimRecord{}).Count(&n).Error; err != nil {
		t.Fatalf("count records: %v", err)
	}
	return n
}

func TestSubmitApprovedClaim(t *testing.T) {
	svc, deps := newTestService(t, testConfig())

	out, err := svc.Submit(context.Background(), testSubmission())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if out.State != claim.StateDone {
		t.Fatalf("Submit() state = %s, want done", out.State)
	}
	if out.Assessment.Category != claim.CategoryRain {
		t.Fatalf("Submit() category = %s", out.Assessment.Category)
	}
	if !out.WeatherOK {
		t.Fatalf("Submit() weatherOK = false")
	}
	if !out.Decision.Approved || out.Decision.Reason != claim.ReasonApproved {
		t.Fatalf("Submit() decision = %+v", out.Decision)
	}
	if out.TransactionID != "re_test_123" {
		t.Fatalf("Submit() transaction id = %q", out.TransactionID)
	}
	if out.RecordID == 0 {
		t.Fatalf("Submit() record id not assigned")
	}

	rec, err := svc.GetRecord(context.Background(), out.RecordID)
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	if err := rec.CheckInvariant(); err != nil {
		t.Fatalf("stored record violates invariant: %v", err)
	}
	if rec.TransactionID == nil || *rec.TransactionID != "re_test_123" {
		t.Fatalf("stored record transaction id = %v", rec.TransactionID)
	}
	if !rec.Estimate.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("stored record estimate = %s", rec.Estimate)
	}

	if len(deps.notifier.events) != 1 {
		t.Fatalf("notifier events = %d, want 1", len(deps.notifier.events))
	}
	if !deps.notifier.events[0].Approved {
		t.Fatalf("notifier event not approved: %+v", deps.notifier.events[0])
	}
}

func TestSubmitDeniedWithoutCorroboration(t *testing.T) {
	svc, deps := newTestService(t, testConfig())
	deps.weather.err = errors.New("geocode timeout")

	out, err := svc.Submit(context.Background(), testSubmission())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if out.State != claim.StateDone {
		t.Fatalf("Submit() state = %s, want done", out.State)
	}
	if out.WeatherOK {
		t.Fatalf("Submit() weatherOK = true after lookup failure")
	}
	if out.Decision.Approved || out.Decision.Reason != claim.ReasonNoCorroboration {
		t.Fatalf("Submit() decision = %+v", out.Decision)
	}
	if out.TransactionID != "" {
		t.Fatalf("Submit() issued payout for denied claim")
	}
	if deps.gateway.calls != 0 {
		t.Fatalf("gateway called %d times for denied claim", deps.gateway.calls)
	}

	rec, err := svc.GetRecord(context.Background(), out.RecordID)
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	if rec.TransactionID != nil {
		t.Fatalf("denied record carries transaction id %q", *rec.TransactionID)
	}
}

func TestSubmitRejectsUnknownPolicy(t *testing.T) {
	svc, deps := newTestService(t, testConfig())

	sub := testSubmission()
	sub.PolicyNumber = "UNKNOWN-000"

	out, err := svc.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if out.State != claim.StateRejected {
		t.Fatalf("Submit() state = %s, want rejected", out.State)
	}
	if out.Decision.Reason != claim.ReasonPolicyUnknown {
		t.Fatalf("Submit() reason = %q", out.Decision.Reason)
	}
	if deps.estimator.calls != 0 {
		t.Fatalf("assessor ran %d times for a rejected policy", deps.estimator.calls)
	}
	if n := countRecords(t, deps.db); n != 0 {
		t.Fatalf("rejected submission created %d records", n)
	}
}

func TestSubmitDeniesEstimateAboveThreshold(t *testing.T) {
	cfg := testConfig()
	cfg.Bounds.Max = decimal.NewFromInt(10000)
	svc, deps := newTestService(t, cfg)
	deps.estimator.estimate = decimal.NewFromInt(6000)

	out, err := svc.Submit(context.Background(), testSubmission())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if out.Decision.Approved || out.Decision.Reason != claim.ReasonEstimateTooHigh {
		t.Fatalf("Submit() decision = %+v", out.Decision)
	}
	if deps.gateway.calls != 0 {
		t.Fatalf("gateway called for denied claim")
	}
}

func TestSubmitClampsEstimate(t *testing.T) {
	svc, deps := newTestService(t, testConfig())
	deps.estimator.estimate = decimal.NewFromInt(999999)

	out, err := svc.Submit(context.Background(), testSubmission())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !out.Assessment.Estimate.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("Submit() estimate = %s, want clamped 5000", out.Assessment.Estimate)
	}
	// Clamped to the threshold boundary, so still approved.
	if !out.Decision.Approved {
		t.Fatalf("Submit() decision = %+v", out.Decision)
	}
}

func TestSubmitRejectsInvalidSubmission(t *testing.T) {
	svc, deps := newTestService(t, testConfig())

	sub := testSubmission()
	sub.Photo = nil

	_, err := svc.Submit(context.Background(), sub)
	if !errors.Is(err, claim.ErrInvalidSubmission) {
		t.Fatalf("Submit() error = %v, want ErrInvalidSubmission", err)
	}
	if deps.registry.calls != 0 {
		t.Fatalf("registry consulted for invalid submission")
	}
	if n := countRecords(t, deps.db); n != 0 {
		t.Fatalf("invalid submission created %d records", n)
	}
}

func TestSubmitPropagatesAssessmentFailure(t *testing.T) {
	svc, deps := newTestService(t, testConfig())
	deps.estimator.err = errors.New("vision backend unreachable")

	_, err := svc.Submit(context.Background(), testSubmission())
	if !errors.Is(err, claim.ErrAssessmentUnavailable) {
		t.Fatalf("Submit() error = %v, want ErrAssessmentUnavailable", err)
	}
	if n := countRecords(t, deps.db); n != 0 {
		t.Fatalf("failed assessment created %d records", n)
	}
}

func TestSubmitPayoutFailureWritesNoRecord(t *testing.T) {
	svc, deps := newTestService(t, testConfig())
	deps.gateway.err = errors.New("card network down")

	out, err := svc.Submit(context.Background(), testSubmission())
	if !errors.Is(err, claim.ErrPayoutFailed) {
		t.Fatalf("Submit() error = %v, want ErrPayoutFailed", err)
	}
	if out.TransactionID != "" {
		t.Fatalf("Submit() kept transaction id %q after failed payout", out.TransactionID)
	}
	if n := countRecords(t, deps.db); n != 0 {
		t.Fatalf("failed payout created %d records", n)
	}
}

type failingRepo struct{}

func (failingRepo) Append(_ context.Context, _ claim.Record) (uint64, error) {
	return 0, errors.New("disk full")
}

func (failingRepo) GetRecord(_ context.Context, _ uint64) (claim.Record, error) {
	return claim.Record{}, errors.New("disk full")
}

func (failingRepo) ListRecords(_ context.Context, _ ports.RecordFilter) ([]claim.Record, error) {
	return nil, errors.New("disk full")
}

type passthroughUow struct{}

func (passthroughUow) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestSubmitPersistenceFailurePropagates(t *testing.T) {
	svc := NewService(
		&fakeRegistry{valid: map[string]bool{"DEMO-12345": true}},
		&fakeEstimator{category: "rain_damage", estimate: decimal.NewFromInt(1200)},
		&fakeWeather{hours: rainyHours()},
		&fakeGateway{txID: "re_test_123"},
		failingRepo{},
		passthroughUow{},
		nil,
		testConfig(),
	)
	svc.now = func() time.Time { return testNow }

	_, err := svc.Submit(context.Background(), testSubmission())
	if !errors.Is(err, claim.ErrPersistenceFailed) {
		t.Fatalf("Submit() error = %v, want ErrPersistenceFailed", err)
	}
}

func TestSubmitNotifierFailureIsNotFatal(t *testing.T) {
	svc, deps := newTestService(t, testConfig())
	deps.notifier.err = errors.New("broker down")

	out, err := svc.Submit(context.Background(), testSubmission())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if out.State != claim.StateDone {
		t.Fatalf("Submit() state = %s", out.State)
	}
}

func TestSubmitWeatherCheckedPerCall(t *testing.T) {
	svc, deps := newTestService(t, testConfig())

	for i := 0; i < 2; i++ {
		if _, err := svc.Submit(context.Background(), testSubmission()); err != nil {
			t.Fatalf("Submit() #%d error = %v", i+1, err)
		}
	}
	if deps.weather.calls != 2 {
		t.Fatalf("weather lookups = %d, want one per submission", deps.weather.calls)
	}
}

func TestSubmitCancelledContext(t *testing.T) {
	svc, deps := newTestService(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Submit(ctx, testSubmission()); err == nil {
		t.Fatalf("Submit() with cancelled context succeeded")
	}
	if n := countRecords(t, deps.db); n != 0 {
		t.Fatalf("cancelled submission created %d records", n)
	}
}
