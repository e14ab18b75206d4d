package models

import (
	"reflect"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in       string
		wantType CommandType
		wantArgs []string
	}{
		{"/achat Test A1 100000 zebu blanc", CommandPurchase, []string{"Test", "A1", "100000", "zebu", "blanc"}},
		{"VENTE Test A1 150000", CommandSale, []string{"Test", "A1", "150000"}},
		{"/dépense Test Aliment 10000", CommandExpense, []string{"Test", "Aliment", "10000"}},
		{"note Test vet came", CommandNote, []string{"Test", "vet", "came"}},
		{"/bilan Test", CommandSummary, []string{"Test"}},
		{"projets", CommandProjects, nil},
		{"hello", CommandUnknown, nil},
		{"   ", CommandUnknown, nil},
	}

	for _, tt := range tests {
		cmd := ParseCommand(tt.in)
		if cmd.Type != tt.wantType {
			t.Errorf("ParseCommand(%q).Type = %q, want %q", tt.in, cmd.Type, tt.wantType)
		}
		if !reflect.DeepEqual(cmd.Args, tt.wantArgs) {
			t.Errorf("ParseCommand(%q).Args = %v, want %v", tt.in, cmd.Args, tt.wantArgs)
		}
	}
}
