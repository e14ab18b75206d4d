package reporting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yafera/herdbook/internal/domain/models"
)

type fakeLedger struct {
	animals  []models.Animal
	expenses []models.Expense
}

func (f *fakeLedger) Animals(context.Context) []models.Animal   { return f.animals }
func (f *fakeLedger) Expenses(context.Context) []models.Expense { return f.expenses }
func (f *fakeLedger) Projects(context.Context) []string {
	seen := map[string]bool{}
	var out []string
	for _, a := range f.animals {
		if !seen[a.Project] {
			seen[a.Project] = true
			out = append(out, a.Project)
		}
	}
	return out
}

type fakeArchive struct {
	saved []models.LedgerSnapshot
	err   error
}

func (f *fakeArchive) SaveSnapshot(_ context.Context, s models.LedgerSnapshot) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeArchive) LatestSnapshots(_ context.Context, project string, limit int64) ([]models.LedgerSnapshot, error) {
	var out []models.LedgerSnapshot
	for i := len(f.saved) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if f.saved[i].Project == project {
			out = append(out, f.saved[i])
		}
	}
	return out, nil
}

func scenarioLedger(t *testing.T) *fakeLedger {
	t.Helper()
	a1, err := models.NewAnimal("Test", "A1", "", decimal.NewFromInt(100000), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if err := a1.MarkSold(decimal.NewFromInt(150000), time.Now()); err != nil {
		t.Fatal(err)
	}
	b1, _ := models.NewAnimal("Ferme", "B1", "", decimal.NewFromInt(80000), time.Now())
	return &fakeLedger{
		animals:  []models.Animal{a1, b1},
		expenses: []models.Expense{{Project: "Test", Category: "Feed", Amount: decimal.NewFromInt(10000)}},
	}
}

func TestService_Summary(t *testing.T) {
	svc := NewService(scenarioLedger(t), nil, nil)

	s, err := svc.Summary(context.Background(), "Test")
	if err != nil {
		t.Fatal(err)
	}
	if !s.NetProfit.Equal(decimal.NewFromInt(40000)) {
		t.Errorf("NetProfit = %s, want 40000", s.NetProfit)
	}

	empty, err := svc.Summary(context.Background(), "Nowhere")
	if err != nil {
		t.Fatalf("Summary(unknown) error = %v", err)
	}
	if !empty.NetProfit.IsZero() || !empty.ROI.IsZero() {
		t.Errorf("unknown project summary = %+v", empty)
	}

	if _, err := svc.Summary(context.Background(), " "); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("Summary(blank) error = %v, want ErrInvalidInput", err)
	}
}

func TestService_ArchiveAndHistory(t *testing.T) {
	archive := &fakeArchive{}
	svc := NewService(scenarioLedger(t), archive, nil)
	svc.now = func() time.Time { return time.Date(2025, 6, 6, 20, 0, 0, 0, time.UTC) }

	saved, err := svc.ArchiveSummaries(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if saved != 2 {
		t.Fatalf("saved = %d, want 2", saved)
	}

	history, err := svc.History(context.Background(), "Test", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].NetProfit != 40000 || history[0].StockValue != 0 {
		t.Errorf("History() = %+v", history)
	}
	if !history[0].CreatedAt.Equal(svc.now()) {
		t.Errorf("CreatedAt = %v", history[0].CreatedAt)
	}
}

func TestService_ArchiveErrors(t *testing.T) {
	archive := &fakeArchive{err: errors.New("mongo down")}
	svc := NewService(scenarioLedger(t), archive, nil)

	saved, err := svc.ArchiveSummaries(context.Background())
	if err == nil || saved != 0 {
		t.Errorf("ArchiveSummaries() = %d, %v; want 0 and an error", saved, err)
	}
}

func TestService_ArchiveDisabled(t *testing.T) {
	svc := NewService(scenarioLedger(t), nil, nil)

	if saved, err := svc.ArchiveSummaries(context.Background()); saved != 0 || err != nil {
		t.Errorf("ArchiveSummaries() = %d, %v", saved, err)
	}
	if _, err := svc.History(context.Background(), "Test", 5); !errors.Is(err, ErrArchiveDisabled) {
		t.Errorf("History() error = %v, want ErrArchiveDisabled", err)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   decimal.Decimal
		want string
	}{
		{decimal.Zero, "0 FCFA"},
		{decimal.NewFromInt(950), "950 FCFA"},
		{decimal.NewFromInt(1000), "1 000 FCFA"},
		{decimal.NewFromInt(150000), "150 000 FCFA"},
		{decimal.NewFromInt(-1234567), "-1 234 567 FCFA"},
		{decimal.RequireFromString("999.6"), "1 000 FCFA"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSummary(t *testing.T) {
	svc := NewService(scenarioLedger(t), nil, nil)
	s, _ := svc.Summary(context.Background(), "Test")

	msg := FormatSummary(s, time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC))
	for _, want := range []string{"Bilan Test (2025-06-06)", "Net profit: 40 000 FCFA", "Feed: 10 000 FCFA", "ROI: 36.36%"} {
		if !strings.Contains(msg, want) {
			t.Errorf("FormatSummary() missing %q:\n%s", want, msg)
		}
	}

	empty := FormatSummary(models.Summary{Project: "Vide"}, time.Now())
	if !strings.Contains(empty, "No records yet.") {
		t.Errorf("empty summary message:\n%s", empty)
	}
}
