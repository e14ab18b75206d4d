package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yafera/herdbook/internal/domain/models"
	"github.com/yafera/herdbook/internal/repository/sheets"
	"github.com/yafera/herdbook/internal/service/reporting"
	"github.com/yafera/herdbook/internal/store"
)

type fakeArchive struct {
	snapshots []models.LedgerSnapshot
}

func (f *fakeArchive) SaveSnapshot(_ context.Context, s models.LedgerSnapshot) error {
	f.snapshots = append(f.snapshots, s)
	return nil
}

func (f *fakeArchive) LatestSnapshots(_ context.Context, project string, limit int64) ([]models.LedgerSnapshot, error) {
	var out []models.LedgerSnapshot
	for i := len(f.snapshots) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if f.snapshots[i].Project == project {
			out = append(out, f.snapshots[i])
		}
	}
	return out, nil
}

type fixture struct {
	engine *gin.Engine
	repo   *sheets.MemoryRepository
}

func newFixture(t *testing.T, archive reporting.SnapshotRepository) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := sheets.NewMemoryRepository()
	st := store.New(repo, store.DefaultTables, time.UTC, nil)
	h := NewLedgerHandler(st, reporting.NewService(st, archive, nil), time.UTC, nil)
	h.now = func() time.Time { return time.Date(2025, 6, 6, 9, 30, 0, 0, time.UTC) }

	r := gin.New()
	r.GET("/projects", h.ListProjects)
	r.GET("/projects/:project/animals", h.ListAnimals)
	r.POST("/projects/:project/animals", h.CreateAnimal)
	r.POST("/projects/:project/animals/:name/sale", h.SellAnimal)
	r.GET("/projects/:project/expenses", h.ListExpenses)
	r.POST("/projects/:project/expenses", h.CreateExpense)
	r.GET("/projects/:project/notes", h.ListNotes)
	r.POST("/projects/:project/notes", h.CreateNote)
	r.GET("/projects/:project/summary", h.Summary)
	r.GET("/projects/:project/history", h.History)
	return fixture{engine: r, repo: repo}
}

func (f fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func TestLedgerHandler_Scenario(t *testing.T) {
	f := newFixture(t, nil)

	if rec := f.do(t, http.MethodPost, "/projects/Test/animals", map[string]any{"name": "A1", "price": 100000, "date": "2025-06-01"}); rec.Code != http.StatusCreated {
		t.Fatalf("create animal status = %d body=%s", rec.Code, rec.Body)
	}
	if rec := f.do(t, http.MethodPost, "/projects/Test/expenses", map[string]any{"category": "Feed", "amount": "10000"}); rec.Code != http.StatusCreated {
		t.Fatalf("create expense status = %d body=%s", rec.Code, rec.Body)
	}

	rec := f.do(t, http.MethodPost, "/projects/Test/animals/A1/sale", map[string]any{"price": 150000})
	if rec.Code != http.StatusOK {
		t.Fatalf("sale status = %d body=%s", rec.Code, rec.Body)
	}
	var sold models.Animal
	if err := json.Unmarshal(rec.Body.Bytes(), &sold); err != nil {
		t.Fatal(err)
	}
	if sold.Status != models.StatusSold || !sold.Profit.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("sold animal = %+v", sold)
	}
	if sold.SaleDate == nil || sold.SaleDate.Format(dateLayout) != "2025-06-06" {
		t.Errorf("sale date = %v, want today", sold.SaleDate)
	}

	rec = f.do(t, http.MethodGet, "/projects/Test/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}
	var summary models.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatal(err)
	}
	checks := map[string]struct{ got, want decimal.Decimal }{
		"stock value":    {summary.StockValue, decimal.Zero},
		"gross profit":   {summary.GrossProfit, decimal.NewFromInt(50000)},
		"total expenses": {summary.TotalExpenses, decimal.NewFromInt(10000)},
		"net profit":     {summary.NetProfit, decimal.NewFromInt(40000)},
	}
	for name, c := range checks {
		if !c.got.Equal(c.want) {
			t.Errorf("%s = %s, want %s", name, c.got, c.want)
		}
	}
}

func TestLedgerHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{name: "sale of unknown animal", method: http.MethodPost, path: "/projects/Test/animals/ZZ/sale", body: map[string]any{"price": 10}, want: http.StatusNotFound},
		{name: "missing name", method: http.MethodPost, path: "/projects/Test/animals", body: map[string]any{"price": 10}, want: http.StatusBadRequest},
		{name: "negative price", method: http.MethodPost, path: "/projects/Test/animals", body: map[string]any{"name": "A1", "price": -5}, want: http.StatusBadRequest},
		{name: "bad date", method: http.MethodPost, path: "/projects/Test/expenses", body: map[string]any{"amount": 5, "date": "06/06/2025"}, want: http.StatusBadRequest},
		{name: "blank project", method: http.MethodPost, path: "/projects/%20/expenses", body: map[string]any{"amount": 5}, want: http.StatusBadRequest},
		{name: "note without comment", method: http.MethodPost, path: "/projects/Test/notes", body: map[string]any{}, want: http.StatusBadRequest},
		{name: "bad status filter", method: http.MethodGet, path: "/projects/Test/animals?status=lost", want: http.StatusBadRequest},
		{name: "history without archive", method: http.MethodGet, path: "/projects/Test/history", want: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			rec := f.do(t, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body=%s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestLedgerHandler_BackendDown(t *testing.T) {
	f := newFixture(t, nil)
	f.repo.FailWrites(errors.New("quota exceeded"))

	rec := f.do(t, http.MethodPost, "/projects/Test/animals", map[string]any{"name": "A1", "price": 10})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("quota")) {
		t.Errorf("backend error leaked to client: %s", rec.Body)
	}
}

func TestLedgerHandler_ListsAndFilters(t *testing.T) {
	f := newFixture(t, nil)
	for _, name := range []string{"A1", "A2"} {
		f.do(t, http.MethodPost, "/projects/Test/animals", map[string]any{"name": name, "price": 100})
	}
	f.do(t, http.MethodPost, "/projects/Other/notes", map[string]any{"comment": "vaccinated"})
	f.do(t, http.MethodPost, "/projects/Test/animals/A2/sale", map[string]any{"price": 150})

	var body struct {
		Animals []models.Animal `json:"animals"`
	}
	rec := f.do(t, http.MethodGet, "/projects/Test/animals?status=present", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Animals) != 1 || body.Animals[0].Name != "A1" {
		t.Errorf("present animals = %+v", body.Animals)
	}

	rec = f.do(t, http.MethodGet, "/projects/Test/animals?status=sold", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Animals) != 1 || body.Animals[0].Name != "A2" {
		t.Errorf("sold animals = %+v", body.Animals)
	}

	var projects struct {
		Projects []string `json:"projects"`
	}
	rec = f.do(t, http.MethodGet, "/projects", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &projects); err != nil {
		t.Fatal(err)
	}
	if len(projects.Projects) != 2 || projects.Projects[0] != "Other" || projects.Projects[1] != "Test" {
		t.Errorf("projects = %v", projects.Projects)
	}
}

func TestLedgerHandler_History(t *testing.T) {
	archive := &fakeArchive{snapshots: []models.LedgerSnapshot{
		{Project: "Test", NetProfit: 100},
		{Project: "Test", NetProfit: 200},
	}}
	f := newFixture(t, archive)

	rec := f.do(t, http.MethodGet, "/projects/Test/history?limit=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Snapshots []models.LedgerSnapshot `json:"snapshots"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Snapshots) != 1 || body.Snapshots[0].NetProfit != 200 {
		t.Errorf("snapshots = %+v", body.Snapshots)
	}

	if rec := f.do(t, http.MethodGet, "/projects/Test/history?limit=zero", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", rec.Code)
	}
}
