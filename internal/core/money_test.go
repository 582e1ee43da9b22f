package core

import "testing"

func TestParseDecimalToPaise(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "plain integer", input: "1250", want: 125000},
		{name: "two decimals", input: "12.34", want: 1234},
		{name: "comma separator", input: "12,34", want: 1234},
		{name: "third decimal rounds down", input: "12.344", want: 1234},
		{name: "third decimal rounds up", input: "12.345", want: 1235},
		{name: "leading dot", input: ".50", want: 50},
		{name: "whitespace trimmed", input: "  7.00 ", want: 700},
		{name: "empty", input: "", wantErr: true},
		{name: "negative rejected", input: "-5", wantErr: true},
		{name: "plus sign rejected", input: "+5", wantErr: true},
		{name: "zero rejected", input: "0.00", wantErr: true},
		{name: "letters rejected", input: "12a.50", wantErr: true},
		{name: "double separator rejected", input: "1.2.3", wantErr: true},
		{name: "arabic digits rejected", input: "1.٣", wantErr: true},
		{name: "devanagari digits rejected", input: "१२.50", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToPaise(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToPaise(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseLitersToMilli(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "whole liters", input: "85", want: 85000},
		{name: "three decimals", input: "85.250", want: 85250},
		{name: "fourth decimal rounds up", input: "1.0005", want: 1001},
		{name: "fourth decimal rounds down", input: "1.0004", want: 1000},
		{name: "comma separator", input: "12,5", want: 12500},
		{name: "zero rejected", input: "0", wantErr: true},
		{name: "garbage rejected", input: "ten liters", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLitersToMilli(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLitersToMilli(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestVolumeLiters(t *testing.T) {
	if got := (Volume{Milli: 85250}).Liters(); got != "85.25 L" {
		t.Errorf("Liters() = %q, want %q", got, "85.25 L")
	}
	if got := (Volume{Milli: -1500}).Liters(); got != "-1.5 L" {
		t.Errorf("Liters() = %q, want %q", got, "-1.5 L")
	}
	if got := (Volume{Milli: 2000}).Liters(); got != "2 L" {
		t.Errorf("Liters() = %q, want %q", got, "2 L")
	}
}

func TestMoneyRupees(t *testing.T) {
	if got := (Money{Paise: 123456}).Rupees(); got != "₹1234.56" {
		t.Errorf("Rupees() = %q, want %q", got, "₹1234.56")
	}
	if got := (Money{Paise: -50}).Rupees(); got != "-₹0.50" {
		t.Errorf("Rupees() = %q, want %q", got, "-₹0.50")
	}
}
