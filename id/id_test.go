package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/stageflow/id"
)

func TestNewRunID(t *testing.T) {
	i := id.NewRunID()
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if i.Prefix() != id.PrefixRun {
		t.Errorf("expected prefix %q, got %q", id.PrefixRun, i.Prefix())
	}
	if !strings.HasPrefix(i.String(), "sfrun_") {
		t.Errorf("expected sfrun_ prefix, got %q", i.String())
	}
}

func TestParseRoundTrip(t *testing.T) {
	original := id.NewRunID()
	parsed, err := id.ParseRunID(original.String())
	if err != nil {
		t.Fatalf("ParseRunID: %v", err)
	}
	if parsed.String() != original.String() {
		t.Errorf("round trip mismatch: %q != %q", parsed.String(), original.String())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"garbage", "not-a-typeid"},
		{"bad suffix", "sfrun_!!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := id.Parse(tt.input); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", tt.input)
			}
		})
	}
}

func TestParseWithPrefixMismatch(t *testing.T) {
	other := id.New("other")
	if _, err := id.ParseRunID(other.String()); err == nil {
		t.Fatal("ParseRunID accepted a foreign prefix")
	}
}

func TestNilID(t *testing.T) {
	if !id.Nil.IsNil() {
		t.Fatal("Nil.IsNil() = false")
	}
	if id.Nil.String() != "" {
		t.Errorf("Nil.String() = %q, want empty", id.Nil.String())
	}
	if id.Nil.Prefix() != "" {
		t.Errorf("Nil.Prefix() = %q, want empty", id.Nil.Prefix())
	}
}

func TestTextMarshalling(t *testing.T) {
	original := id.NewRunID()

	data, err := original.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}

	var decoded id.ID
	if err := decoded.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if decoded.String() != original.String() {
		t.Errorf("text round trip mismatch: %q != %q", decoded.String(), original.String())
	}

	var nilDecoded id.ID
	if err := nilDecoded.UnmarshalText(nil); err != nil {
		t.Fatalf("UnmarshalText(nil): %v", err)
	}
	if !nilDecoded.IsNil() {
		t.Error("UnmarshalText(nil) did not produce Nil ID")
	}
}
