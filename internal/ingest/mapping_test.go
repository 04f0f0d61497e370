package ingest

import (
	"errors"
	"testing"
)

func allowedFields() map[string]struct{} {
	return FieldSet(DefaultFields())
}

func TestNormalizeColumn(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Loaner_ID", "loaner_id"},
		{"  loaner_id  ", "loaner_id"},
		{"LOANER_ID", "loaner_id"},
		{" Name ", "name"},
		{"year", "year"},
	}

	for _, c := range cases {
		if got := NormalizeColumn(c.in); got != c.want {
			t.Errorf("NormalizeColumn(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestResolve_CaseAndWhitespaceVariants(t *testing.T) {
	variants := []string{"loaner_id", "Loaner_ID", " LOANER_ID ", "\tloaner_id\t"}

	for _, col := range variants {
		final, err := Resolve([]string{col}, StaticMapping, nil, allowedFields())
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", col, err)
		}
		if final[col] != FieldClientID {
			t.Errorf("Resolve(%q) = %q, want %q", col, final[col], FieldClientID)
		}
	}
}

func TestResolve_StaticOverridesClassifier(t *testing.T) {
	classified := map[string]string{
		"loaner_id": FieldFullName, // wrong suggestion for a column the static table knows
	}

	final, err := Resolve([]string{"loaner_id"}, StaticMapping, classified, allowedFields())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if final["loaner_id"] != FieldClientID {
		t.Errorf("loaner_id resolved to %q, want static %q", final["loaner_id"], FieldClientID)
	}
}

func TestResolve_ClassifierFillsUnknownColumns(t *testing.T) {
	classified := map[string]string{
		"Customer Phone": FieldPhoneNo,
	}

	final, err := Resolve([]string{"customer phone"}, StaticMapping, classified, allowedFields())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if final["customer phone"] != FieldPhoneNo {
		t.Errorf("customer phone resolved to %q, want %q", final["customer phone"], FieldPhoneNo)
	}
}

func TestResolve_UnknownClassifierFieldNeverLeaks(t *testing.T) {
	classified := map[string]string{
		"mystery": "drop_table", // not a member of the destination set
		"phone":   FieldPhoneNo,
	}

	final, err := Resolve([]string{"mystery", "phone"}, StaticMapping, classified, allowedFields())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, ok := final["mystery"]; ok {
		t.Errorf("unvalidated classifier field leaked into the final mapping: %v", final)
	}
	if final["phone"] != FieldPhoneNo {
		t.Errorf("phone resolved to %q, want %q", final["phone"], FieldPhoneNo)
	}
}

func TestResolve_StripsValidityFlag(t *testing.T) {
	classified := map[string]string{
		"is_valid": "true",
		"phone":    FieldPhoneNo,
	}

	final, err := Resolve([]string{"is_valid", "phone"}, StaticMapping, classified, allowedFields())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, ok := final["is_valid"]; ok {
		t.Error("is_valid metadata key was treated as a column mapping")
	}
}

func TestResolve_EmptyResultIsError(t *testing.T) {
	_, err := Resolve([]string{"foo", "bar"}, StaticMapping, nil, allowedFields())
	if !errors.Is(err, ErrNoColumnsMapped) {
		t.Errorf("Resolve() error = %v, want ErrNoColumnsMapped", err)
	}
}

func TestResolve_PreservesOriginalKeys(t *testing.T) {
	// Worked example: original casing/spacing preserved as keys, matched
	// normalized.
	cols := []string{"Loaner_ID", " Name ", "loan_amount"}

	final, err := Resolve(cols, StaticMapping, map[string]string{}, allowedFields())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := map[string]string{
		"Loaner_ID":   FieldClientID,
		" Name ":      FieldFullName,
		"loan_amount": FieldClientAmount,
	}
	if len(final) != len(want) {
		t.Fatalf("Resolve() = %v, want %v", final, want)
	}
	for k, v := range want {
		if final[k] != v {
			t.Errorf("final[%q] = %q, want %q", k, final[k], v)
		}
	}
}

func TestRenamedColumns_SourceOrderNoDuplicates(t *testing.T) {
	cols := []string{"loan_amount", "Loaner_ID", "also_id"}
	final := map[string]string{
		"loan_amount": FieldClientAmount,
		"Loaner_ID":   FieldClientID,
		"also_id":     FieldClientID, // second column landing on the same field
	}

	got := RenamedColumns(cols, final, allowedFields())
	want := []string{FieldClientAmount, FieldClientID}
	if len(got) != len(want) {
		t.Fatalf("RenamedColumns() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RenamedColumns()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
