package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saswatsam786/raise.info/internal/models"
)

type memoryMirror struct {
	mu      sync.Mutex
	records []models.SalaryRecord
}

func (m *memoryMirror) InsertSalary(_ context.Context, record models.SalaryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

func TestSubmitCountsOnlyCreated(t *testing.T) {
	var payloads []createSalaryRequest
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/salaries", r.URL.Path)
		var p createSalaryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		payloads = append(payloads, p)
		calls++
		if calls == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	mirror := &memoryMirror{}
	gw := New(server.URL, time.Second, mirror, zap.NewNop())

	yoe := 3.5
	records := []models.SalaryRecord{
		{
			CompanyName:       "Acme",
			Designation:       "Software Engineer - L4",
			Location:          "India",
			BaseSalary:        1200000,
			Bonus:             0,
			TotalCompensation: 1200000,
			YearsOfExperience: &yoe,
		},
		{CompanyName: "Acme", Designation: "Dropped", TotalCompensation: 100},
		{CompanyName: "Acme", Designation: "Software Engineer - L5", TotalCompensation: 2400000},
	}

	accepted := gw.Submit(context.Background(), records)
	assert.Equal(t, 2, accepted)
	assert.Len(t, mirror.records, 2)

	require.Len(t, payloads, 3)
	first := payloads[0]
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, "1200000", first.BaseSalary)
	assert.Equal(t, "", first.Bonus)
	assert.Equal(t, "3.5", first.YearsOfExperience)
	assert.Equal(t, "fulltime", first.Type)
	assert.Equal(t, "Full-time", first.EmploymentType)
}

func TestSubmitTransportErrorSkipsRecord(t *testing.T) {
	gw := New("http://127.0.0.1:1", 200*time.Millisecond, nil, zap.NewNop())

	accepted := gw.Submit(context.Background(), []models.SalaryRecord{
		{CompanyName: "Acme", Designation: "SWE", TotalCompensation: 100},
	})
	assert.Equal(t, 0, accepted)
}

func TestSubmitEmptyInput(t *testing.T) {
	gw := New("http://example.invalid", time.Second, nil, zap.NewNop())
	assert.Equal(t, 0, gw.Submit(context.Background(), nil))
}
