package identifier

import (
	"errors"
	"testing"
)

func TestDigits(t *testing.T) {
	tests := []struct {
		label  string
		want   string
		wantOK bool
	}{
		{"12", "12", true},
		{"  Sample 12b ", "12", true},
		{"A7-99", "7", true},
		{"no digits", "", false},
		{"", "", false},
		{"   ", "", false},
		{"٣٤", "٣٤", true},
	}
	for _, tt := range tests {
		got, ok := Digits(tt.label)
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("Digits(%q) = (%q, %v), want (%q, %v)", tt.label, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestArtifactNameIdempotent(t *testing.T) {
	first, ok := ArtifactName(" 12 ", "2018", 257)
	if !ok {
		t.Fatal("expected artifact name")
	}
	second, _ := ArtifactName(" 12 ", "2018", 257)
	if first != second {
		t.Fatalf("artifact name not deterministic: %q vs %q", first, second)
	}
	if first != "12_2018_257.jpg" {
		t.Fatalf("unexpected artifact name %q", first)
	}
}

func TestArtifactNameRequiresDigits(t *testing.T) {
	if name, ok := ArtifactName("control", "2018", 256); ok {
		t.Fatalf("expected no artifact for label without digits, got %q", name)
	}
}

func TestLedgerKeySchemes(t *testing.T) {
	tests := []struct {
		name   string
		label  string
		scheme Scheme
		want   string
	}{
		{"label scheme keeps raw label", " Sample 12 ", SchemeLabel, "Sample 12_2019_300"},
		{"digits scheme uses digits", "Sample 12", SchemeDigits, "12_2019_300"},
		{"digits scheme falls back", "control", SchemeDigits, "control_2019_300"},
		{"empty label", "", SchemeLabel, "_2019_300"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LedgerKey(tt.label, "2019", 300, tt.scheme); got != tt.want {
				t.Fatalf("LedgerKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWhitelistNameMatchesArtifactForNumericLabels(t *testing.T) {
	key := LedgerKey("12", "2018", 257, SchemeLabel)
	name, _ := ArtifactName("12", "2018", 257)
	if WhitelistName(key) != name {
		t.Fatalf("whitelist %q does not protect artifact %q", WhitelistName(key), name)
	}
	if got := WhitelistName("Sample 12_2018_257"); got != "Sample_12_2018_257.jpg" {
		t.Fatalf("unexpected whitelist name %q", got)
	}
}

func TestYearFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"/data/2017/lab_2018_v2.pptx", "2018", false},
		{"slides1999.pptx", "1999", false},
		{"session-3.pptx", "", true},
		{"batch_2100.pptx", "", true},
	}
	for _, tt := range tests {
		got, err := YearFromPath(tt.path)
		if tt.wantErr {
			if !errors.Is(err, ErrNoYear) {
				t.Fatalf("YearFromPath(%q) error = %v, want ErrNoYear", tt.path, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("YearFromPath(%q) = (%q, %v), want %q", tt.path, got, err, tt.want)
		}
	}
}
