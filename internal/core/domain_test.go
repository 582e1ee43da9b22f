package core

import (
	"strings"
	"testing"
)

func TestLedgerEntryValidate(t *testing.T) {
	date := NewDate(2026, 8, 15)
	tests := []struct {
		name    string
		entry   LedgerEntry
		wantErr error
	}{
		{
			name:  "valid borrow",
			entry: LedgerEntry{PartyID: 1, Date: date, Kind: Borrow, Quantity: Volume{Milli: 50000}},
		},
		{
			name:  "valid cash settlement",
			entry: LedgerEntry{PartyID: 1, Date: date, Kind: SettleCash, Amount: Money{Paise: 500000}, Rate: 9000},
		},
		{
			name:  "valid cash settlement without rate",
			entry: LedgerEntry{PartyID: 1, Date: date, Kind: SettleCash, Amount: Money{Paise: 500000}},
		},
		{
			name:  "valid received with truck",
			entry: LedgerEntry{PartyID: 2, Date: date, Kind: Received, Quantity: Volume{Milli: 120000}, TruckID: 4},
		},
		{
			name:    "missing party",
			entry:   LedgerEntry{Date: date, Kind: Borrow, Quantity: Volume{Milli: 1000}},
			wantErr: ErrMissingParty,
		},
		{
			name:    "zero date",
			entry:   LedgerEntry{PartyID: 1, Kind: Borrow, Quantity: Volume{Milli: 1000}},
			wantErr: ErrInvalidDate,
		},
		{
			name:    "unknown kind",
			entry:   LedgerEntry{PartyID: 1, Date: date, Kind: "loan", Quantity: Volume{Milli: 1000}},
			wantErr: ErrInvalidKind,
		},
		{
			name:    "borrow without quantity",
			entry:   LedgerEntry{PartyID: 1, Date: date, Kind: Borrow},
			wantErr: ErrMissingQuantity,
		},
		{
			name:    "cash settlement without amount",
			entry:   LedgerEntry{PartyID: 1, Date: date, Kind: SettleCash, Rate: 9000},
			wantErr: ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err != tt.wantErr {
				t.Fatalf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLedgerKindIsBridged(t *testing.T) {
	bridged := map[LedgerKind]bool{
		Borrow:       false,
		SettleCash:   false,
		SettleLiters: true,
		Received:     true,
	}
	for kind, want := range bridged {
		if got := kind.IsBridged(); got != want {
			t.Errorf("%s.IsBridged() = %v, want %v", kind, got, want)
		}
	}
}

func TestFuelLogValidate(t *testing.T) {
	base := FuelLog{
		TruckID:  3,
		Date:     NewDate(2026, 8, 10),
		Quantity: Volume{Milli: 60000},
		Cost:     Money{Paise: 540000},
		Source:   FuelSourcePump,
	}

	if err := base.Validate(); err != nil {
		t.Fatalf("valid pump fill rejected: %v", err)
	}

	noCost := base
	noCost.Cost = Money{}
	if err := noCost.Validate(); err != ErrInvalidAmount {
		t.Errorf("pump fill without cost: got %v, want %v", err, ErrInvalidAmount)
	}

	bridged := base
	bridged.Source = FuelSourceBridge
	bridged.Cost = Money{}
	bridged.LedgerEntryID = 9
	if err := bridged.Validate(); err != nil {
		t.Errorf("bridged fill without cost should be valid, got %v", err)
	}

	noTruck := base
	noTruck.TruckID = 0
	if err := noTruck.Validate(); err != ErrMissingTruck {
		t.Errorf("fill without truck: got %v, want %v", err, ErrMissingTruck)
	}
}

func TestPartyValidate(t *testing.T) {
	if err := (Party{Name: "Sharma Diesel Works"}).Validate(); err != nil {
		t.Fatalf("valid party rejected: %v", err)
	}
	if err := (Party{Name: "  "}).Validate(); err != ErrEmptyName {
		t.Errorf("blank name: got %v, want %v", err, ErrEmptyName)
	}
	if err := (Party{Name: strings.Repeat("x", 121)}).Validate(); err == nil {
		t.Error("overlong name accepted")
	}
}

func TestCoalAndMiningValidate(t *testing.T) {
	coal := CoalLog{TruckID: 1, Date: NewDate(2026, 8, 1), Trips: 4, TonnageKg: 64000, Site: "Block B"}
	if err := coal.Validate(); err != nil {
		t.Fatalf("valid coal log rejected: %v", err)
	}
	coal.Trips = 0
	if err := coal.Validate(); err == nil {
		t.Error("coal log with zero trips accepted")
	}

	mining := MiningLog{Date: NewDate(2026, 8, 1), Site: "Block B", Material: "coal", OutputKg: 250000}
	if err := mining.Validate(); err != nil {
		t.Fatalf("valid mining log rejected: %v", err)
	}
	mining.Site = ""
	if err := mining.Validate(); err == nil {
		t.Error("mining log without site accepted")
	}
}
