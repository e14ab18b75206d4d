package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/yafera/herdbook/internal/config"
	"github.com/yafera/herdbook/internal/repository/sheets"
	"github.com/yafera/herdbook/internal/service/reporting"
	"github.com/yafera/herdbook/internal/store"
)

// useMemoryLedger makes every command of the test share one in-memory ledger.
func useMemoryLedger(t *testing.T) *int {
	t.Helper()
	t.Setenv("SHEETS_BACKEND", config.BackendMemory)
	t.Setenv("MONGODB_URI", "")
	t.Setenv("WHATSAPP_TOKEN", "")

	st := store.New(sheets.NewMemoryRepository(), store.DefaultTables, time.UTC, nil)
	closed := new(int)

	original := openLedger
	openLedger = func(context.Context, *config.Config, *zap.Logger) (*ledger, error) {
		return &ledger{store: st, reports: reporting.NewService(st, nil, nil), loc: time.UTC, close: func() { *closed++ }}, nil
	}
	t.Cleanup(func() { openLedger = original })
	return closed
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := Execute(context.Background())

	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	return out.String(), err
}

func TestCLI_LedgerScenario(t *testing.T) {
	useMemoryLedger(t)

	steps := []struct {
		args []string
		want string
	}{
		{args: []string{"buy", "Test", "A1", "100000", "--date", "2025-06-01", "-d", "Zebu"}, want: "Bought A1 for 100 000 FCFA in Test on 2025-06-01."},
		{args: []string{"buy", "Test", "A2", "100,000"}, want: "Bought A2 for 100 000 FCFA in Test"},
		{args: []string{"expense", "Test", "Feed", "10000", "--note", "sacs de son"}, want: "Expense Feed 10 000 FCFA recorded in Test."},
		{args: []string{"sell", "Test", "A1", "150000"}, want: "Sold A1 for 150 000 FCFA, profit 50 000 FCFA."},
		{args: []string{"note", "Test", "vaccinated", "the", "herd"}, want: "Note added to Test."},
		{args: []string{"projects"}, want: "Test"},
		{args: []string{"notes", "Test"}, want: "vaccinated the herd"},
		{args: []string{"animals", "Test", "--status", "sold"}, want: "Vendu"},
		{args: []string{"summary", "Test"}, want: "Net profit: 40 000 FCFA"},
	}

	for _, step := range steps {
		out, err := run(t, step.args...)
		if err != nil {
			t.Fatalf("%v: error = %v (output %q)", step.args, err, out)
		}
		if !strings.Contains(out, step.want) {
			t.Errorf("%v: output %q does not contain %q", step.args, out, step.want)
		}
	}
}

func TestCLI_Errors(t *testing.T) {
	useMemoryLedger(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "bad amount", args: []string{"buy", "Test", "A1", "cent"}},
		{name: "ambiguous amount", args: []string{"buy", "Test", "A1", "1,0000"}},
		{name: "bad date", args: []string{"buy", "Test", "A1", "100", "--date", "01/06/2025"}},
		{name: "unknown animal", args: []string{"sell", "Test", "ZZ", "100"}},
		{name: "bad status", args: []string{"animals", "Test", "--status", "lost"}},
		{name: "missing args", args: []string{"sell", "Test"}},
		{name: "history without archive", args: []string{"history", "Test"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Errorf("%v: expected an error", tt.args)
			}
		})
	}
}

func TestCLI_EmptyLedger(t *testing.T) {
	useMemoryLedger(t)

	out, err := run(t, "projects")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No projects yet.") {
		t.Errorf("output = %q", out)
	}

	out, err = run(t, "summary", "Nowhere")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No records yet.") {
		t.Errorf("output = %q", out)
	}
}

func TestCLI_ClosesLedgerAfterFailedCommand(t *testing.T) {
	closed := useMemoryLedger(t)

	if _, err := run(t, "sell", "Test", "Ghost", "100"); err == nil {
		t.Fatal("expected an error for an unknown animal")
	}
	if *closed != 1 {
		t.Errorf("ledger closed %d times after a failed command, want 1", *closed)
	}

	if _, err := run(t, "projects"); err != nil {
		t.Fatal(err)
	}
	if *closed != 2 {
		t.Errorf("ledger closed %d times after two commands, want 2", *closed)
	}
	if current != nil {
		t.Error("ledger still open after Execute returned")
	}
}
