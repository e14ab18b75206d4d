package commands

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yafera/herdbook/internal/domain/models"
	"github.com/yafera/herdbook/internal/repository/sheets"
	"github.com/yafera/herdbook/internal/service/reporting"
	"github.com/yafera/herdbook/internal/store"
)

func newTestDispatcher(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st := store.New(sheets.NewMemoryRepository(), store.DefaultTables, time.UTC, nil)
	svc := NewService(st, reporting.NewService(st, nil, nil), time.UTC, nil)
	svc.now = func() time.Time { return time.Date(2025, 6, 6, 18, 45, 0, 0, time.UTC) }
	return svc, st
}

func run(t *testing.T, svc *Service, text string) (string, error) {
	t.Helper()
	return svc.HandleCommand(context.Background(), models.ParseCommand(text), "22500000000")
}

func TestHandleCommand_Scenario(t *testing.T) {
	svc, st := newTestDispatcher(t)

	steps := []struct {
		text string
		want string
	}{
		{"/achat Test A1 100000 zebu rouge", "Purchase saved: A1 in Test for 100 000 FCFA on 2025-06-06."},
		{"/depense Test Feed 10000 sacs de son", "Expense saved: Feed 10 000 FCFA in Test on 2025-06-06."},
		{"/vente Test A1 150000", "Sale saved: A1 sold for 150 000 FCFA, profit 50 000 FCFA."},
		{"/note Test vaccination faite", "Note saved in Test."},
		{"/projets", "Projects: Test"},
	}
	for _, step := range steps {
		got, err := run(t, svc, step.text)
		if err != nil {
			t.Fatalf("%q: error = %v", step.text, err)
		}
		if got != step.want {
			t.Errorf("%q: reply = %q, want %q", step.text, got, step.want)
		}
	}

	reply, err := run(t, svc, "/bilan Test")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply, "Net profit: 40 000 FCFA") || !strings.Contains(reply, "Stock value: 0 FCFA") {
		t.Errorf("bilan reply:\n%s", reply)
	}

	animals := st.ProjectAnimals(context.Background(), "Test")
	if len(animals) != 1 || animals[0].Description != "zebu rouge" {
		t.Errorf("stored animals = %+v", animals)
	}
	notes := st.ProjectNotes(context.Background(), "Test")
	if len(notes) != 1 || notes[0].Comment != "vaccination faite" {
		t.Errorf("stored notes = %+v", notes)
	}
}

func TestHandleCommand_SaleOfUnknownAnimal(t *testing.T) {
	svc, _ := newTestDispatcher(t)

	reply, err := run(t, svc, "/vente Test A1 150000")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "No animal left to sell in Test." {
		t.Errorf("reply = %q", reply)
	}

	if _, err := run(t, svc, "/achat Test A2 1000"); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, svc, "/achat Test A3 1000"); err != nil {
		t.Fatal(err)
	}
	reply, err = run(t, svc, "/vente Test A1 150000")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "A1 is not a present animal of Test. Present: A2, A3." {
		t.Errorf("reply = %q", reply)
	}
}

func TestHandleCommand_InvalidArguments(t *testing.T) {
	svc, _ := newTestDispatcher(t)

	for _, text := range []string{
		"/achat Test A1",
		"/achat Test A1 cher",
		"/achat Test A1 -5",
		"/vente Test A1",
		"/vente Test A1 10 extra",
		"/depense Test Aliment",
		"/note Test",
		"/bilan",
	} {
		if _, err := run(t, svc, text); !errors.Is(err, ErrInvalidArguments) {
			t.Errorf("%q: error = %v, want ErrInvalidArguments", text, err)
		}
	}
}

func TestHandleCommand_Unsupported(t *testing.T) {
	svc, _ := newTestDispatcher(t)
	if _, err := run(t, svc, "bonjour"); !errors.Is(err, ErrUnsupportedCommand) {
		t.Errorf("error = %v, want ErrUnsupportedCommand", err)
	}
}

func TestHandleCommand_EmptyProjects(t *testing.T) {
	svc, _ := newTestDispatcher(t)
	reply, err := run(t, svc, "projets")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(reply, "No project yet.") {
		t.Errorf("reply = %q", reply)
	}
}

func TestHandleCommand_GroupedAmounts(t *testing.T) {
	tests := []struct {
		text    string
		want    string
		wantErr error
	}{
		{text: "/achat Test A1 100,000", want: "Purchase saved: A1 in Test for 100 000 FCFA on 2025-06-06."},
		{text: "/depense Test Aliment 1,250,000", want: "Expense saved: Aliment 1 250 000 FCFA in Test on 2025-06-06."},
		{text: "/achat Test A2 1,0000", wantErr: ErrInvalidArguments},
		{text: "/achat Test A3 -1", wantErr: ErrInvalidArguments},
	}

	for _, tt := range tests {
		svc, _ := newTestDispatcher(t)
		got, err := run(t, svc, tt.text)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("%q: error = %v, want %v", tt.text, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: error = %v", tt.text, err)
		}
		if got != tt.want {
			t.Errorf("%q: reply = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestHelpText(t *testing.T) {
	if got := HelpText(models.CommandSale); got != "Usage: /vente <projet> <nom> <prix>" {
		t.Errorf("HelpText(sale) = %q", got)
	}
	if got := HelpText(models.CommandUnknown); !strings.Contains(got, "/bilan <projet>") {
		t.Errorf("HelpText(unknown) = %q", got)
	}
}
