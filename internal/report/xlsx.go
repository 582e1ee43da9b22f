package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"haulbook/internal/core"
)

// MonthData is everything that goes into one month's workbook.
type MonthData struct {
	Year   int
	Month  int
	Fuel   []core.FuelLog
	Coal   []core.CoalLog
	Mining []core.MiningLog

	// Truck registrations and driver names keyed by ID, for display.
	Trucks  map[int64]string
	Drivers map[int64]string
}

// WriteMonthXLSX renders the month workbook: one sheet per log type
// plus a summary sheet with totals.
func WriteMonthXLSX(w io.Writer, data MonthData) error {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	f.SetSheetName("Sheet1", summarySheet)

	if err := writeFuelSheet(f, data); err != nil {
		return err
	}
	if err := writeCoalSheet(f, data); err != nil {
		return err
	}
	if err := writeMiningSheet(f, data); err != nil {
		return err
	}
	if err := writeSummarySheet(f, summarySheet, data); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeFuelSheet(f *excelize.File, data MonthData) error {
	const sheet = "Fuel"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create fuel sheet: %w", err)
	}

	headers := []any{"Date", "Truck", "Driver", "Liters", "Cost", "Odometer km", "Station", "Source"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write fuel header: %w", err)
	}

	for i, log := range data.Fuel {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			log.Date.Format("2006-01-02"),
			data.Trucks[log.TruckID],
			data.Drivers[log.DriverID],
			float64(log.Quantity.Milli) / 1000.0,
			float64(log.Cost.Paise) / 100.0,
			log.OdometerKm,
			log.Station,
			log.Source,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write fuel row %d: %w", i+2, err)
		}
	}
	return nil
}

func writeCoalSheet(f *excelize.File, data MonthData) error {
	const sheet = "Coal"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create coal sheet: %w", err)
	}

	headers := []any{"Date", "Truck", "Driver", "Trips", "Tonnage kg", "Site", "Destination"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write coal header: %w", err)
	}

	for i, log := range data.Coal {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			log.Date.Format("2006-01-02"),
			data.Trucks[log.TruckID],
			data.Drivers[log.DriverID],
			log.Trips,
			log.TonnageKg,
			log.Site,
			log.Destination,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write coal row %d: %w", i+2, err)
		}
	}
	return nil
}

func writeMiningSheet(f *excelize.File, data MonthData) error {
	const sheet = "Mining"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create mining sheet: %w", err)
	}

	headers := []any{"Date", "Site", "Material", "Output kg"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write mining header: %w", err)
	}

	for i, log := range data.Mining {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			log.Date.Format("2006-01-02"),
			log.Site,
			log.Material,
			log.OutputKg,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write mining row %d: %w", i+2, err)
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, sheet string, data MonthData) error {
	var (
		fuelMilli int64
		fuelPaise int64
		coalTrips int64
		coalKg    int64
		miningKg  int64
	)
	for _, log := range data.Fuel {
		fuelMilli += log.Quantity.Milli
		fuelPaise += log.Cost.Paise
	}
	for _, log := range data.Coal {
		coalTrips += int64(log.Trips)
		coalKg += log.TonnageKg
	}
	for _, log := range data.Mining {
		miningKg += log.OutputKg
	}

	rows := [][]any{
		{fmt.Sprintf("Month report %04d-%02d", data.Year, data.Month)},
		{},
		{"Diesel consumed (L)", float64(fuelMilli) / 1000.0},
		{"Diesel cost", float64(fuelPaise) / 100.0},
		{"Coal trips", coalTrips},
		{"Coal hauled (kg)", coalKg},
		{"Mining output (kg)", miningKg},
	}
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	return nil
}
