package store

import (
	"errors"
	"testing"

	"github.com/chandanasjanmatti2004-boop/loan-app-task/internal/ingest"
)

func TestValidIdentifier(t *testing.T) {
	valid := []string{"llm_mapping", "clients_2024", "_staging", "A", "t1"}
	for _, name := range valid {
		if !ValidIdentifier(name) {
			t.Errorf("ValidIdentifier(%q) = false, want true", name)
		}
	}

	invalid := []string{
		"",
		"1table",
		"client-data",
		"clients; DROP TABLE clients",
		"clients table",
		`"clients"`,
		"clients.other",
		"таблица",
	}
	for _, name := range invalid {
		if ValidIdentifier(name) {
			t.Errorf("ValidIdentifier(%q) = true, want false", name)
		}
	}
}

func TestBindValue_Numerics(t *testing.T) {
	v, err := bindValue(ingest.FieldClientAmount, " 1200.50 ")
	if err != nil {
		t.Fatalf("bindValue() error = %v", err)
	}
	if v != 1200.50 {
		t.Errorf("client_amount = %v, want 1200.50", v)
	}

	v, err = bindValue(ingest.FieldYear, "2024")
	if err != nil {
		t.Fatalf("bindValue() error = %v", err)
	}
	if v != 2024 {
		t.Errorf("year = %v, want 2024", v)
	}
}

func TestBindValue_EmptyCellsAreNull(t *testing.T) {
	for _, field := range []string{
		ingest.FieldFullName,
		ingest.FieldClientAmount,
		ingest.FieldTotalLand,
		ingest.FieldYear,
	} {
		v, err := bindValue(field, "  ")
		if err != nil {
			t.Fatalf("bindValue(%s) error = %v", field, err)
		}
		if v != nil {
			t.Errorf("bindValue(%s, empty) = %v, want nil", field, v)
		}
	}
}

func TestBindValue_BadNumericIsBadCell(t *testing.T) {
	if _, err := bindValue(ingest.FieldClientAmount, "twelve"); !errors.Is(err, ingest.ErrBadCell) {
		t.Errorf("bindValue(amount) error = %v, want ErrBadCell", err)
	}
	if _, err := bindValue(ingest.FieldYear, "2024.5"); !errors.Is(err, ingest.ErrBadCell) {
		t.Errorf("bindValue(year) error = %v, want ErrBadCell", err)
	}
}

func TestBindValue_StringsPassThrough(t *testing.T) {
	v, err := bindValue(ingest.FieldFullName, "Asha Devi")
	if err != nil {
		t.Fatalf("bindValue() error = %v", err)
	}
	if v != "Asha Devi" {
		t.Errorf("full_name = %v", v)
	}
}
