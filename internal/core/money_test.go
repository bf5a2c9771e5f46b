package core

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"12.34", 12.34, false},
		{"12,34", 12.34, false},
		{"10", 10, false},
		{"12.345", 12.35, false}, // half-up on the third decimal
		{" 9.99 ", 9.99, false},
		{"", 0, true},
		{"abc", 0, true},
		{"0", 0, true},
		{"-5.00", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAmount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseSignedAmount(t *testing.T) {
	got, err := ParseSignedAmount("-23,45")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != -23.45 {
		t.Errorf("ParseSignedAmount = %v, want -23.45", got)
	}
}

func TestFormatEuros(t *testing.T) {
	if got := FormatEuros(12.3); got != "€12.30" {
		t.Errorf("FormatEuros(12.3) = %q", got)
	}
	if got := FormatEuros(-4.5); got != "-€4.50" {
		t.Errorf("FormatEuros(-4.5) = %q", got)
	}
}
