package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"haulbook/internal/core"
	"haulbook/internal/ledger"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("record not found")

// PendingSyncEntry is the slim view the mirror worker scans for.
type PendingSyncEntry struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func dateString(d core.Date) string {
	return d.Format("2006-01-02")
}

func parseDate(s string) core.Date {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return core.Date{}
	}
	return core.Date{Time: t}
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id > 0}
}

func wrapNotFound(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *SQLiteRepository) CreateTruck(ctx context.Context, t core.Truck) (core.Truck, error) {
	active := int64(0)
	if t.Active {
		active = 1
	}
	row, err := r.queries.CreateTruck(ctx, CreateTruckParams{
		Registration: t.Registration,
		Model:        t.Model,
		CapacityTons: int64(t.CapacityTons),
		Active:       active,
	})
	if err != nil {
		return core.Truck{}, fmt.Errorf("create truck: %w", err)
	}

	slog.InfoContext(ctx, "Truck saved", "id", row.ID, "registration", row.Registration)
	return truckFromRow(row), nil
}

func (r *SQLiteRepository) GetTruck(ctx context.Context, id int64) (core.Truck, error) {
	row, err := r.queries.GetTruck(ctx, id)
	if err != nil {
		return core.Truck{}, wrapNotFound(err, "get truck")
	}
	return truckFromRow(row), nil
}

func (r *SQLiteRepository) ListTrucks(ctx context.Context) ([]core.Truck, error) {
	rows, err := r.queries.ListTrucks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list trucks: %w", err)
	}
	trucks := make([]core.Truck, len(rows))
	for i, row := range rows {
		trucks[i] = truckFromRow(row)
	}
	return trucks, nil
}

func (r *SQLiteRepository) DeleteTruck(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteTruck(ctx, id)
	if err != nil {
		return fmt.Errorf("delete truck: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete truck: %w", ErrNotFound)
	}
	return nil
}

func truckFromRow(row Truck) core.Truck {
	return core.Truck{
		ID:           row.ID,
		Registration: row.Registration,
		Model:        row.Model,
		CapacityTons: int(row.CapacityTons),
		Active:       row.Active != 0,
	}
}

func (r *SQLiteRepository) CreateDriver(ctx context.Context, d core.Driver) (core.Driver, error) {
	row, err := r.queries.CreateDriver(ctx, CreateDriverParams{
		Name:      d.Name,
		Phone:     d.Phone,
		LicenseNo: d.LicenseNo,
		TruckID:   nullID(d.TruckID),
	})
	if err != nil {
		return core.Driver{}, fmt.Errorf("create driver: %w", err)
	}

	slog.InfoContext(ctx, "Driver saved", "id", row.ID, "name", row.Name)
	return driverFromRow(row), nil
}

func (r *SQLiteRepository) GetDriver(ctx context.Context, id int64) (core.Driver, error) {
	row, err := r.queries.GetDriver(ctx, id)
	if err != nil {
		return core.Driver{}, wrapNotFound(err, "get driver")
	}
	return driverFromRow(row), nil
}

func (r *SQLiteRepository) ListDrivers(ctx context.Context) ([]core.Driver, error) {
	rows, err := r.queries.ListDrivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	drivers := make([]core.Driver, len(rows))
	for i, row := range rows {
		drivers[i] = driverFromRow(row)
	}
	return drivers, nil
}

func (r *SQLiteRepository) DeleteDriver(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteDriver(ctx, id)
	if err != nil {
		return fmt.Errorf("delete driver: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete driver: %w", ErrNotFound)
	}
	return nil
}

func driverFromRow(row Driver) core.Driver {
	return core.Driver{
		ID:        row.ID,
		Name:      row.Name,
		Phone:     row.Phone,
		LicenseNo: row.LicenseNo,
		TruckID:   row.TruckID.Int64,
	}
}

func (r *SQLiteRepository) CreateParty(ctx context.Context, p core.Party) (core.Party, error) {
	row, err := r.queries.CreateParty(ctx, CreatePartyParams{Name: p.Name, Phone: p.Phone})
	if err != nil {
		return core.Party{}, fmt.Errorf("create party: %w", err)
	}

	slog.InfoContext(ctx, "Party saved", "id", row.ID, "name", row.Name)
	return core.Party{ID: row.ID, Name: row.Name, Phone: row.Phone}, nil
}

func (r *SQLiteRepository) GetParty(ctx context.Context, id int64) (core.Party, error) {
	row, err := r.queries.GetParty(ctx, id)
	if err != nil {
		return core.Party{}, wrapNotFound(err, "get party")
	}
	return core.Party{ID: row.ID, Name: row.Name, Phone: row.Phone}, nil
}

func (r *SQLiteRepository) ListParties(ctx context.Context) ([]core.Party, error) {
	rows, err := r.queries.ListParties(ctx)
	if err != nil {
		return nil, fmt.Errorf("list parties: %w", err)
	}
	return partiesFromRows(rows), nil
}

func (r *SQLiteRepository) DeleteParty(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteParty(ctx, id)
	if err != nil {
		return fmt.Errorf("delete party: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete party: %w", ErrNotFound)
	}
	return nil
}

func partiesFromRows(rows []Party) []core.Party {
	parties := make([]core.Party, len(rows))
	for i, row := range rows {
		parties[i] = core.Party{ID: row.ID, Name: row.Name, Phone: row.Phone}
	}
	return parties
}

// CreateLedgerEntry writes the entry and, for kinds that put diesel into our
// tanks, the mirrored fuel log in the same transaction. Either both rows
// land or neither does.
func (r *SQLiteRepository) CreateLedgerEntry(ctx context.Context, e core.LedgerEntry) (core.LedgerEntry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	row, err := qtx.CreateLedgerEntry(ctx, CreateLedgerEntryParams{
		PartyID:       e.PartyID,
		EntryDate:     dateString(e.Date),
		Kind:          string(e.Kind),
		QuantityMilli: e.Quantity.Milli,
		AmountPaise:   e.Amount.Paise,
		RatePaise:     e.Rate,
		TruckID:       nullID(e.TruckID),
		Note:          e.Note,
	})
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("create ledger entry: %w", err)
	}

	saved := ledgerEntryFromRow(row)
	if bridge, ok := ledger.BridgeFuelLog(saved); ok {
		if _, err := qtx.CreateFuelLog(ctx, CreateFuelLogParams{
			TruckID:       nullID(bridge.TruckID),
			LogDate:       dateString(bridge.Date),
			QuantityMilli: bridge.Quantity.Milli,
			Station:       bridge.Station,
			Source:        bridge.Source,
			LedgerEntryID: nullID(saved.ID),
		}); err != nil {
			return core.LedgerEntry{}, fmt.Errorf("create bridge fuel log: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.LedgerEntry{}, fmt.Errorf("commit tx: %w", err)
	}

	slog.InfoContext(ctx, "Ledger entry saved",
		"id", saved.ID,
		"party_id", saved.PartyID,
		"kind", saved.Kind,
		"quantity_milli", saved.Quantity.Milli,
		"amount_paise", saved.Amount.Paise)

	return saved, nil
}

func (r *SQLiteRepository) GetLedgerEntry(ctx context.Context, id int64) (core.LedgerEntry, error) {
	row, err := r.queries.GetLedgerEntry(ctx, id)
	if err != nil {
		return core.LedgerEntry{}, wrapNotFound(err, "get ledger entry")
	}
	return ledgerEntryFromRow(row), nil
}

func (r *SQLiteRepository) ListLedgerEntriesByParty(ctx context.Context, partyID int64) ([]core.LedgerEntry, error) {
	rows, err := r.queries.ListLedgerEntriesByParty(ctx, partyID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries by party: %w", err)
	}
	return ledgerEntriesFromRows(rows), nil
}

func (r *SQLiteRepository) ListLedgerEntries(ctx context.Context, limit int) ([]core.LedgerEntry, error) {
	rows, err := r.queries.ListLedgerEntries(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return ledgerEntriesFromRows(rows), nil
}

// DeleteLedgerEntry soft-deletes the entry and any fuel log bridged from it
// in one transaction.
func (r *SQLiteRepository) DeleteLedgerEntry(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	n, err := qtx.DeleteLedgerEntry(ctx, id)
	if err != nil {
		return fmt.Errorf("delete ledger entry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete ledger entry: %w", ErrNotFound)
	}

	if err := qtx.DeleteFuelLogByLedgerEntry(ctx, id); err != nil {
		return fmt.Errorf("delete bridge fuel log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	slog.InfoContext(ctx, "Ledger entry deleted", "id", id)
	return nil
}

// GetPendingSyncEntries returns entries not yet mirrored to the spreadsheet.
func (r *SQLiteRepository) GetPendingSyncEntries(ctx context.Context, limit int) ([]PendingSyncEntry, error) {
	rows, err := r.queries.GetPendingSyncEntries(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync entries: %w", err)
	}
	pending := make([]PendingSyncEntry, len(rows))
	for i, row := range rows {
		pending[i] = PendingSyncEntry{
			ID:        row.ID,
			Version:   row.Version,
			CreatedAt: row.CreatedAt,
		}
	}
	return pending, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if err := r.queries.MarkEntrySynced(ctx, id); err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}
	slog.InfoContext(ctx, "Ledger entry marked as synced", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if err := r.queries.MarkEntrySyncError(ctx, id); err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}
	slog.WarnContext(ctx, "Ledger entry marked with sync error", "id", id)
	return nil
}

func ledgerEntryFromRow(row LedgerEntry) core.LedgerEntry {
	return core.LedgerEntry{
		ID:       row.ID,
		PartyID:  row.PartyID,
		Date:     parseDate(row.EntryDate),
		Kind:     core.LedgerKind(row.Kind),
		Quantity: core.Volume{Milli: row.QuantityMilli},
		Amount:   core.Money{Paise: row.AmountPaise},
		Rate:     row.RatePaise,
		TruckID:  row.TruckID.Int64,
		Note:     row.Note,
	}
}

func ledgerEntriesFromRows(rows []LedgerEntry) []core.LedgerEntry {
	entries := make([]core.LedgerEntry, len(rows))
	for i, row := range rows {
		entries[i] = ledgerEntryFromRow(row)
	}
	return entries
}

func (r *SQLiteRepository) CreateFuelLog(ctx context.Context, f core.FuelLog) (core.FuelLog, error) {
	source := f.Source
	if source == "" {
		source = core.FuelSourcePump
	}
	row, err := r.queries.CreateFuelLog(ctx, CreateFuelLogParams{
		TruckID:       nullID(f.TruckID),
		DriverID:      nullID(f.DriverID),
		LogDate:       dateString(f.Date),
		QuantityMilli: f.Quantity.Milli,
		CostPaise:     f.Cost.Paise,
		OdometerKm:    f.OdometerKm,
		Station:       f.Station,
		Source:        source,
		LedgerEntryID: nullID(f.LedgerEntryID),
	})
	if err != nil {
		return core.FuelLog{}, fmt.Errorf("create fuel log: %w", err)
	}

	slog.InfoContext(ctx, "Fuel log saved",
		"id", row.ID,
		"truck_id", row.TruckID.Int64,
		"quantity_milli", row.QuantityMilli,
		"source", row.Source)

	return fuelLogFromRow(row), nil
}

func (r *SQLiteRepository) ListFuelLogsBetween(ctx context.Context, from, to core.Date) ([]core.FuelLog, error) {
	rows, err := r.queries.ListFuelLogsBetween(ctx, dateString(from), dateString(to))
	if err != nil {
		return nil, fmt.Errorf("list fuel logs: %w", err)
	}
	logs := make([]core.FuelLog, len(rows))
	for i, row := range rows {
		logs[i] = fuelLogFromRow(row)
	}
	return logs, nil
}

func (r *SQLiteRepository) DeleteFuelLog(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteFuelLog(ctx, id)
	if err != nil {
		return fmt.Errorf("delete fuel log: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete fuel log: %w", ErrNotFound)
	}
	return nil
}

func fuelLogFromRow(row FuelLog) core.FuelLog {
	return core.FuelLog{
		ID:            row.ID,
		TruckID:       row.TruckID.Int64,
		DriverID:      row.DriverID.Int64,
		Date:          parseDate(row.LogDate),
		Quantity:      core.Volume{Milli: row.QuantityMilli},
		Cost:          core.Money{Paise: row.CostPaise},
		OdometerKm:    row.OdometerKm,
		Station:       row.Station,
		Source:        row.Source,
		LedgerEntryID: row.LedgerEntryID.Int64,
	}
}

func (r *SQLiteRepository) CreateCoalLog(ctx context.Context, c core.CoalLog) (core.CoalLog, error) {
	row, err := r.queries.CreateCoalLog(ctx, CreateCoalLogParams{
		TruckID:     c.TruckID,
		DriverID:    nullID(c.DriverID),
		LogDate:     dateString(c.Date),
		Trips:       int64(c.Trips),
		TonnageKg:   c.TonnageKg,
		Site:        c.Site,
		Destination: c.Destination,
	})
	if err != nil {
		return core.CoalLog{}, fmt.Errorf("create coal log: %w", err)
	}

	slog.InfoContext(ctx, "Coal log saved", "id", row.ID, "truck_id", row.TruckID, "trips", row.Trips)
	return coalLogFromRow(row), nil
}

func (r *SQLiteRepository) ListCoalLogsBetween(ctx context.Context, from, to core.Date) ([]core.CoalLog, error) {
	rows, err := r.queries.ListCoalLogsBetween(ctx, dateString(from), dateString(to))
	if err != nil {
		return nil, fmt.Errorf("list coal logs: %w", err)
	}
	logs := make([]core.CoalLog, len(rows))
	for i, row := range rows {
		logs[i] = coalLogFromRow(row)
	}
	return logs, nil
}

func (r *SQLiteRepository) DeleteCoalLog(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteCoalLog(ctx, id)
	if err != nil {
		return fmt.Errorf("delete coal log: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete coal log: %w", ErrNotFound)
	}
	return nil
}

func coalLogFromRow(row CoalLog) core.CoalLog {
	return core.CoalLog{
		ID:          row.ID,
		TruckID:     row.TruckID,
		DriverID:    row.DriverID.Int64,
		Date:        parseDate(row.LogDate),
		Trips:       int(row.Trips),
		TonnageKg:   row.TonnageKg,
		Site:        row.Site,
		Destination: row.Destination,
	}
}

func (r *SQLiteRepository) CreateMiningLog(ctx context.Context, m core.MiningLog) (core.MiningLog, error) {
	row, err := r.queries.CreateMiningLog(ctx, CreateMiningLogParams{
		LogDate:  dateString(m.Date),
		Site:     m.Site,
		Material: m.Material,
		OutputKg: m.OutputKg,
	})
	if err != nil {
		return core.MiningLog{}, fmt.Errorf("create mining log: %w", err)
	}

	slog.InfoContext(ctx, "Mining log saved", "id", row.ID, "site", row.Site, "output_kg", row.OutputKg)
	return miningLogFromRow(row), nil
}

func (r *SQLiteRepository) ListMiningLogsBetween(ctx context.Context, from, to core.Date) ([]core.MiningLog, error) {
	rows, err := r.queries.ListMiningLogsBetween(ctx, dateString(from), dateString(to))
	if err != nil {
		return nil, fmt.Errorf("list mining logs: %w", err)
	}
	logs := make([]core.MiningLog, len(rows))
	for i, row := range rows {
		logs[i] = miningLogFromRow(row)
	}
	return logs, nil
}

func (r *SQLiteRepository) DeleteMiningLog(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteMiningLog(ctx, id)
	if err != nil {
		return fmt.Errorf("delete mining log: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete mining log: %w", ErrNotFound)
	}
	return nil
}

func miningLogFromRow(row MiningLog) core.MiningLog {
	return core.MiningLog{
		ID:       row.ID,
		Date:     parseDate(row.LogDate),
		Site:     row.Site,
		Material: row.Material,
		OutputKg: row.OutputKg,
	}
}
