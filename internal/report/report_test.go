package report

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"haulbook/internal/core"
	"haulbook/internal/ledger"
)

func sampleMonthData() MonthData {
	return MonthData{
		Year:  2026,
		Month: 8,
		Fuel: []core.FuelLog{
			{
				ID:       1,
				TruckID:  1,
				DriverID: 1,
				Date:     core.NewDate(2026, 8, 5),
				Quantity: core.Volume{Milli: 80_000},
				Cost:     core.Money{Paise: 720_000},
				Station:  "HP Karanpura",
				Source:   core.FuelSourcePump,
			},
			{
				ID:       2,
				TruckID:  1,
				Date:     core.NewDate(2026, 8, 9),
				Quantity: core.Volume{Milli: 50_000},
				Source:   core.FuelSourceBridge,
			},
		},
		Coal: []core.CoalLog{
			{ID: 1, TruckID: 1, Date: core.NewDate(2026, 8, 6), Trips: 3, TonnageKg: 75_000, Site: "Block B"},
		},
		Mining: []core.MiningLog{
			{ID: 1, Date: core.NewDate(2026, 8, 7), Site: "Block B", Material: "coal", OutputKg: 120_000},
		},
		Trucks:  map[int64]string{1: "MH12AB1234"},
		Drivers: map[int64]string{1: "Ramesh"},
	}
}

func TestWriteMonthXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMonthXLSX(&buf, sampleMonthData()); err != nil {
		t.Fatalf("WriteMonthXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{"Summary", "Fuel", "Coal", "Mining"} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Errorf("missing sheet %q", sheet)
		}
	}

	got, err := f.GetCellValue("Fuel", "D2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if got != "80" {
		t.Errorf("Fuel!D2 = %q, want %q", got, "80")
	}

	truck, err := f.GetCellValue("Fuel", "B2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if truck != "MH12AB1234" {
		t.Errorf("Fuel!B2 = %q, want registration", truck)
	}

	// Summary totals cover both pump and bridged fuel
	liters, err := f.GetCellValue("Summary", "B3")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if liters != "130" {
		t.Errorf("Summary!B3 = %q, want %q", liters, "130")
	}
}

func TestWriteStatementPDF(t *testing.T) {
	entries := []core.LedgerEntry{
		{ID: 1, PartyID: 1, Date: core.NewDate(2026, 8, 1), Kind: core.Borrow, Quantity: core.Volume{Milli: 100_000}},
		{ID: 2, PartyID: 1, Date: core.NewDate(2026, 8, 10), Kind: core.SettleCash, Amount: core.Money{Paise: 270_000}, Rate: 9_000},
	}
	st := ledger.Reconcile(1, entries, 0)

	var buf bytes.Buffer
	err := WriteStatementPDF(&buf, core.Party{ID: 1, Name: "Sharma Fuels"}, st)
	if err != nil {
		t.Fatalf("WriteStatementPDF: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected PDF bytes")
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output does not start with PDF header")
	}
}

func TestWriteMonthXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := WriteMonthXLSX(&buf, MonthData{Year: 2026, Month: 2})
	if err != nil {
		t.Fatalf("WriteMonthXLSX empty: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected workbook bytes")
	}
}
