package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saswatsam786/raise.info/internal/apperrors"
	"github.com/saswatsam786/raise.info/internal/models"
)

type attemptRecord struct {
	status  models.ScrapeStatus
	records int
	message string
}

type fakeStore struct {
	failCompany map[string]bool
	failStart   bool
	attempts    map[string]*attemptRecord
	touched     []string
	nextID      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		failCompany: make(map[string]bool),
		attempts:    make(map[string]*attemptRecord),
	}
}

func (s *fakeStore) GetOrCreateCompany(_ context.Context, name string) (models.Company, error) {
	if s.failCompany[name] {
		return models.Company{}, errors.New("companies collection unavailable")
	}
	return models.Company{ID: name + "-id", Name: name}, nil
}

func (s *fakeStore) StartAttempt(_ context.Context, company models.Company, source string) (string, error) {
	if s.failStart {
		return "", errors.New("insert failed")
	}
	s.nextID++
	id := company.Name + "/" + source
	s.attempts[id] = &attemptRecord{status: models.StatusInProgress}
	return id, nil
}

func (s *fakeStore) CompleteAttempt(_ context.Context, attemptID string, status models.ScrapeStatus, records int, errorMessage string) error {
	a, ok := s.attempts[attemptID]
	if !ok {
		return errors.New("unknown attempt")
	}
	a.status = status
	a.records = records
	a.message = errorMessage
	return nil
}

func (s *fakeStore) TouchDataSource(_ context.Context, source string) error {
	s.touched = append(s.touched, source)
	return nil
}

type fakeOracle struct {
	stale map[string]bool
}

func (o *fakeOracle) ShouldScrape(_ context.Context, companyName, source string, _ time.Duration) bool {
	if o.stale == nil {
		return true
	}
	return o.stale[companyName+"/"+source]
}

type fakeExtractor struct {
	source  string
	records []models.SalaryRecord
	err     error
}

func (e *fakeExtractor) Source() string { return e.source }

func (e *fakeExtractor) Extract(_ context.Context, _ models.Company) ([]models.SalaryRecord, error) {
	return e.records, e.err
}

type fakeGateway struct {
	accepted int
	got      [][]models.SalaryRecord
}

func (g *fakeGateway) Submit(_ context.Context, records []models.SalaryRecord) int {
	g.got = append(g.got, records)
	if g.accepted >= 0 && g.accepted < len(records) {
		return g.accepted
	}
	return len(records)
}

func record(designation string) models.SalaryRecord {
	return models.SalaryRecord{Designation: designation, TotalCompensation: 100}
}

func TestRunForCompanySuccess(t *testing.T) {
	store := newFakeStore()
	gw := &fakeGateway{accepted: -1}
	app := New(store, &fakeOracle{}, gw, []Extractor{
		&fakeExtractor{source: "levels_fyi", records: []models.SalaryRecord{record("a"), record("b")}},
		&fakeExtractor{source: "weekday", records: []models.SalaryRecord{record("c")}},
	}, time.Hour, zap.NewNop())

	result, err := app.RunForCompany(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Records["levels_fyi"])
	assert.Equal(t, 1, result.Records["weekday"])
	assert.Equal(t, 3, result.Accepted)
	assert.Empty(t, result.Errors)
	assert.ElementsMatch(t, []string{"levels_fyi", "weekday"}, store.touched)

	attempt := store.attempts["Acme/levels_fyi"]
	require.NotNil(t, attempt)
	assert.Equal(t, models.StatusSuccess, attempt.status)
	assert.Equal(t, 2, attempt.records)
}

func TestRunForCompanyExtractorFailure(t *testing.T) {
	store := newFakeStore()
	app := New(store, &fakeOracle{}, &fakeGateway{accepted: -1}, []Extractor{
		&fakeExtractor{source: "levels_fyi", err: apperrors.NoPayload("No __NEXT_DATA__ found")},
		&fakeExtractor{source: "weekday", records: []models.SalaryRecord{record("c")}},
	}, time.Hour, zap.NewNop())

	result, err := app.RunForCompany(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, "No __NEXT_DATA__ found", result.Errors["levels_fyi"])
	assert.Equal(t, 1, result.Records["weekday"])

	failed := store.attempts["Acme/levels_fyi"]
	require.NotNil(t, failed)
	assert.Equal(t, models.StatusFailed, failed.status)
	assert.Equal(t, "No __NEXT_DATA__ found", failed.message)
	// data source state is only touched on a successful non-empty scrape
	assert.Equal(t, []string{"weekday"}, store.touched)
}

func TestRunForCompanyEmptyResult(t *testing.T) {
	store := newFakeStore()
	app := New(store, &fakeOracle{}, &fakeGateway{accepted: -1}, []Extractor{
		&fakeExtractor{source: "levels_fyi"},
	}, time.Hour, zap.NewNop())

	result, err := app.RunForCompany(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Records["levels_fyi"])
	assert.Empty(t, result.Errors)

	attempt := store.attempts["Acme/levels_fyi"]
	require.NotNil(t, attempt)
	assert.Equal(t, models.StatusSuccess, attempt.status)
	assert.Equal(t, "No salary data found", attempt.message)
	assert.Empty(t, store.touched)
}

func TestRunForCompanySkipsFreshSources(t *testing.T) {
	store := newFakeStore()
	oracle := &fakeOracle{stale: map[string]bool{"Acme/weekday": true}}
	gw := &fakeGateway{accepted: -1}
	app := New(store, oracle, gw, []Extractor{
		&fakeExtractor{source: "levels_fyi", records: []models.SalaryRecord{record("a")}},
		&fakeExtractor{source: "weekday", records: []models.SalaryRecord{record("b")}},
	}, time.Hour, zap.NewNop())

	result, err := app.RunForCompany(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"levels_fyi"}, result.Skipped)
	assert.NotContains(t, result.Records, "levels_fyi")
	assert.Equal(t, 1, result.Records["weekday"])
	assert.Nil(t, store.attempts["Acme/levels_fyi"])
}

func TestRunAllContinuesAfterCompanyFailure(t *testing.T) {
	store := newFakeStore()
	store.failCompany["Broken"] = true
	app := New(store, &fakeOracle{}, &fakeGateway{accepted: -1}, []Extractor{
		&fakeExtractor{source: "levels_fyi", records: []models.SalaryRecord{record("a")}},
	}, time.Hour, zap.NewNop())

	ticks := 0
	results := app.RunAll(context.Background(), []string{"Broken", "Acme"}, func() { ticks++ })
	require.Len(t, results, 2)
	assert.NotEmpty(t, results[0].Errors["_company"])
	assert.Equal(t, 1, results[1].Records["levels_fyi"])
	assert.Equal(t, 2, ticks)
}

func TestRunForCompanyStartAttemptFailure(t *testing.T) {
	store := newFakeStore()
	store.failStart = true
	app := New(store, &fakeOracle{}, &fakeGateway{accepted: -1}, []Extractor{
		&fakeExtractor{source: "levels_fyi", records: []models.SalaryRecord{record("a")}},
	}, time.Hour, zap.NewNop())

	result, err := app.RunForCompany(context.Background(), "Acme")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Errors["levels_fyi"])
	assert.Empty(t, result.Records)
}
