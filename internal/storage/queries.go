package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so queries can run inside
// or outside a transaction.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Truck struct {
	ID           int64
	Registration string
	Model        string
	CapacityTons int64
	Active       int64
	CreatedAt    time.Time
}

const createTruck = `
INSERT INTO trucks (registration, model, capacity_tons, active)
VALUES (?, ?, ?, ?)
RETURNING id, registration, model, capacity_tons, active, created_at
`

type CreateTruckParams struct {
	Registration string
	Model        string
	CapacityTons int64
	Active       int64
}

func (q *Queries) CreateTruck(ctx context.Context, arg CreateTruckParams) (Truck, error) {
	row := q.db.QueryRowContext(ctx, createTruck, arg.Registration, arg.Model, arg.CapacityTons, arg.Active)
	var t Truck
	err := row.Scan(&t.ID, &t.Registration, &t.Model, &t.CapacityTons, &t.Active, &t.CreatedAt)
	return t, err
}

const getTruck = `
SELECT id, registration, model, capacity_tons, active, created_at
FROM trucks
WHERE id = ? AND deleted_at IS NULL
`

func (q *Queries) GetTruck(ctx context.Context, id int64) (Truck, error) {
	row := q.db.QueryRowContext(ctx, getTruck, id)
	var t Truck
	err := row.Scan(&t.ID, &t.Registration, &t.Model, &t.CapacityTons, &t.Active, &t.CreatedAt)
	return t, err
}

const listTrucks = `
SELECT id, registration, model, capacity_tons, active, created_at
FROM trucks
WHERE deleted_at IS NULL
ORDER BY registration
`

func (q *Queries) ListTrucks(ctx context.Context) ([]Truck, error) {
	rows, err := q.db.QueryContext(ctx, listTrucks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Truck
	for rows.Next() {
		var t Truck
		if err := rows.Scan(&t.ID, &t.Registration, &t.Model, &t.CapacityTons, &t.Active, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const deleteTruck = `
UPDATE trucks SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL
`

func (q *Queries) DeleteTruck(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTruck, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type Driver struct {
	ID        int64
	Name      string
	Phone     string
	LicenseNo string
	TruckID   sql.NullInt64
	CreatedAt time.Time
}

const createDriver = `
INSERT INTO drivers (name, phone, license_no, truck_id)
VALUES (?, ?, ?, ?)
RETURNING id, name, phone, license_no, truck_id, created_at
`

type CreateDriverParams struct {
	Name      string
	Phone     string
	LicenseNo string
	TruckID   sql.NullInt64
}

func (q *Queries) CreateDriver(ctx context.Context, arg CreateDriverParams) (Driver, error) {
	row := q.db.QueryRowContext(ctx, createDriver, arg.Name, arg.Phone, arg.LicenseNo, arg.TruckID)
	var d Driver
	err := row.Scan(&d.ID, &d.Name, &d.Phone, &d.LicenseNo, &d.TruckID, &d.CreatedAt)
	return d, err
}

const getDriver = `
SELECT id, name, phone, license_no, truck_id, created_at
FROM drivers
WHERE id = ? AND deleted_at IS NULL
`

func (q *Queries) GetDriver(ctx context.Context, id int64) (Driver, error) {
	row := q.db.QueryRowContext(ctx, getDriver, id)
	var d Driver
	err := row.Scan(&d.ID, &d.Name, &d.Phone, &d.LicenseNo, &d.TruckID, &d.CreatedAt)
	return d, err
}

const listDrivers = `
SELECT id, name, phone, license_no, truck_id, created_at
FROM drivers
WHERE deleted_at IS NULL
ORDER BY name
`

func (q *Queries) ListDrivers(ctx context.Context) ([]Driver, error) {
	rows, err := q.db.QueryContext(ctx, listDrivers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Driver
	for rows.Next() {
		var d Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.Phone, &d.LicenseNo, &d.TruckID, &d.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

const deleteDriver = `
UPDATE drivers SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL
`

func (q *Queries) DeleteDriver(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteDriver, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type Party struct {
	ID        int64
	Name      string
	Phone     string
	CreatedAt time.Time
}

const createParty = `
INSERT INTO parties (name, phone)
VALUES (?, ?)
RETURNING id, name, phone, created_at
`

type CreatePartyParams struct {
	Name  string
	Phone string
}

func (q *Queries) CreateParty(ctx context.Context, arg CreatePartyParams) (Party, error) {
	row := q.db.QueryRowContext(ctx, createParty, arg.Name, arg.Phone)
	var p Party
	err := row.Scan(&p.ID, &p.Name, &p.Phone, &p.CreatedAt)
	return p, err
}

const getParty = `
SELECT id, name, phone, created_at
FROM parties
WHERE id = ? AND deleted_at IS NULL
`

func (q *Queries) GetParty(ctx context.Context, id int64) (Party, error) {
	row := q.db.QueryRowContext(ctx, getParty, id)
	var p Party
	err := row.Scan(&p.ID, &p.Name, &p.Phone, &p.CreatedAt)
	return p, err
}

const listParties = `
SELECT id, name, phone, created_at
FROM parties
WHERE deleted_at IS NULL
ORDER BY name
`

func (q *Queries) ListParties(ctx context.Context) ([]Party, error) {
	rows, err := q.db.QueryContext(ctx, listParties)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Party
	for rows.Next() {
		var p Party
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const deleteParty = `
UPDATE parties SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL
`

func (q *Queries) DeleteParty(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteParty, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type LedgerEntry struct {
	ID            int64
	PartyID       int64
	EntryDate     string
	Kind          string
	QuantityMilli int64
	AmountPaise   int64
	RatePaise     int64
	TruckID       sql.NullInt64
	Note          string
	SyncStatus    string
	Version       int64
	CreatedAt     time.Time
}

const ledgerEntryColumns = `id, party_id, entry_date, kind, quantity_milli, amount_paise, rate_paise, truck_id, note, sync_status, version, created_at`

const createLedgerEntry = `
INSERT INTO ledger_entries (party_id, entry_date, kind, quantity_milli, amount_paise, rate_paise, truck_id, note)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + ledgerEntryColumns

type CreateLedgerEntryParams struct {
	PartyID       int64
	EntryDate     string
	Kind          string
	QuantityMilli int64
	AmountPaise   int64
	RatePaise     int64
	TruckID       sql.NullInt64
	Note          string
}

func (q *Queries) CreateLedgerEntry(ctx context.Context, arg CreateLedgerEntryParams) (LedgerEntry, error) {
	row := q.db.QueryRowContext(ctx, createLedgerEntry,
		arg.PartyID, arg.EntryDate, arg.Kind, arg.QuantityMilli, arg.AmountPaise, arg.RatePaise, arg.TruckID, arg.Note)
	return scanLedgerEntry(row)
}

const getLedgerEntry = `
SELECT ` + ledgerEntryColumns + `
FROM ledger_entries
WHERE id = ? AND deleted_at IS NULL
`

func (q *Queries) GetLedgerEntry(ctx context.Context, id int64) (LedgerEntry, error) {
	return scanLedgerEntry(q.db.QueryRowContext(ctx, getLedgerEntry, id))
}

const listLedgerEntriesByParty = `
SELECT ` + ledgerEntryColumns + `
FROM ledger_entries
WHERE party_id = ? AND deleted_at IS NULL
ORDER BY entry_date, id
`

func (q *Queries) ListLedgerEntriesByParty(ctx context.Context, partyID int64) ([]LedgerEntry, error) {
	rows, err := q.db.QueryContext(ctx, listLedgerEntriesByParty, partyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLedgerEntries(rows)
}

const listLedgerEntries = `
SELECT ` + ledgerEntryColumns + `
FROM ledger_entries
WHERE deleted_at IS NULL
ORDER BY entry_date DESC, id DESC
LIMIT ?
`

func (q *Queries) ListLedgerEntries(ctx context.Context, limit int64) ([]LedgerEntry, error) {
	rows, err := q.db.QueryContext(ctx, listLedgerEntries, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLedgerEntries(rows)
}

const deleteLedgerEntry = `
UPDATE ledger_entries
SET deleted_at = CURRENT_TIMESTAMP, version = version + 1
WHERE id = ? AND deleted_at IS NULL
`

func (q *Queries) DeleteLedgerEntry(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteLedgerEntry, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getPendingSyncEntries = `
SELECT ` + ledgerEntryColumns + `
FROM ledger_entries
WHERE sync_status = 'pending' AND deleted_at IS NULL
ORDER BY created_at
LIMIT ?
`

func (q *Queries) GetPendingSyncEntries(ctx context.Context, limit int64) ([]LedgerEntry, error) {
	rows, err := q.db.QueryContext(ctx, getPendingSyncEntries, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLedgerEntries(rows)
}

const markEntrySynced = `
UPDATE ledger_entries SET sync_status = 'synced' WHERE id = ?
`

func (q *Queries) MarkEntrySynced(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markEntrySynced, id)
	return err
}

const markEntrySyncError = `
UPDATE ledger_entries SET sync_status = 'error' WHERE id = ?
`

func (q *Queries) MarkEntrySyncError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markEntrySyncError, id)
	return err
}

func scanLedgerEntry(row *sql.Row) (LedgerEntry, error) {
	var e LedgerEntry
	err := row.Scan(&e.ID, &e.PartyID, &e.EntryDate, &e.Kind, &e.QuantityMilli, &e.AmountPaise,
		&e.RatePaise, &e.TruckID, &e.Note, &e.SyncStatus, &e.Version, &e.CreatedAt)
	return e, err
}

func collectLedgerEntries(rows *sql.Rows) ([]LedgerEntry, error) {
	var items []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.PartyID, &e.EntryDate, &e.Kind, &e.QuantityMilli, &e.AmountPaise,
			&e.RatePaise, &e.TruckID, &e.Note, &e.SyncStatus, &e.Version, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

type FuelLog struct {
	ID            int64
	TruckID       sql.NullInt64
	DriverID      sql.NullInt64
	LogDate       string
	QuantityMilli int64
	CostPaise     int64
	OdometerKm    int64
	Station       string
	Source        string
	LedgerEntryID sql.NullInt64
	CreatedAt     time.Time
}

const fuelLogColumns = `id, truck_id, driver_id, log_date, quantity_milli, cost_paise, odometer_km, station, source, ledger_entry_id, created_at`

const createFuelLog = `
INSERT INTO fuel_logs (truck_id, driver_id, log_date, quantity_milli, cost_paise, odometer_km, station, source, ledger_entry_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + fuelLogColumns

type CreateFuelLogParams struct {
	TruckID       sql.NullInt64
	DriverID      sql.NullInt64
	LogDate       string
	QuantityMilli int64
	CostPaise     int64
	OdometerKm    int64
	Station       string
	Source        string
	LedgerEntryID sql.NullInt64
}

func (q *Queries) CreateFuelLog(ctx context.Context, arg CreateFuelLogParams) (FuelLog, error) {
	row := q.db.QueryRowContext(ctx, createFuelLog,
		arg.TruckID, arg.DriverID, arg.LogDate, arg.QuantityMilli, arg.CostPaise,
		arg.OdometerKm, arg.Station, arg.Source, arg.LedgerEntryID)
	var f FuelLog
	err := row.Scan(&f.ID, &f.TruckID, &f.DriverID, &f.LogDate, &f.QuantityMilli, &f.CostPaise,
		&f.OdometerKm, &f.Station, &f.Source, &f.LedgerEntryID, &f.CreatedAt)
	return f, err
}

const listFuelLogsBetween = `
SELECT ` + fuelLogColumns + `
FROM fuel_logs
WHERE log_date >= ? AND log_date <= ? AND deleted_at IS NULL
ORDER BY log_date, id
`

func (q *Queries) ListFuelLogsBetween(ctx context.Context, from, to string) ([]FuelLog, error) {
	rows, err := q.db.QueryContext(ctx, listFuelLogsBetween, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []FuelLog
	for rows.Next() {
		var f FuelLog
		if err := rows.Scan(&f.ID, &f.TruckID, &f.DriverID, &f.LogDate, &f.QuantityMilli, &f.CostPaise,
			&f.OdometerKm, &f.Station, &f.Source, &f.LedgerEntryID, &f.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

const deleteFuelLog = `
UPDATE fuel_logs SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL
`

func (q *Queries) DeleteFuelLog(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteFuelLog, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteFuelLogByLedgerEntry = `
UPDATE fuel_logs SET deleted_at = CURRENT_TIMESTAMP WHERE ledger_entry_id = ? AND deleted_at IS NULL
`

func (q *Queries) DeleteFuelLogByLedgerEntry(ctx context.Context, ledgerEntryID int64) error {
	_, err := q.db.ExecContext(ctx, deleteFuelLogByLedgerEntry, ledgerEntryID)
	return err
}

type CoalLog struct {
	ID          int64
	TruckID     int64
	DriverID    sql.NullInt64
	LogDate     string
	Trips       int64
	TonnageKg   int64
	Site        string
	Destination string
	CreatedAt   time.Time
}

const coalLogColumns = `id, truck_id, driver_id, log_date, trips, tonnage_kg, site, destination, created_at`

const createCoalLog = `
INSERT INTO coal_logs (truck_id, driver_id, log_date, trips, tonnage_kg, site, destination)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + coalLogColumns

type CreateCoalLogParams struct {
	TruckID     int64
	DriverID    sql.NullInt64
	LogDate     string
	Trips       int64
	TonnageKg   int64
	Site        string
	Destination string
}

func (q *Queries) CreateCoalLog(ctx context.Context, arg CreateCoalLogParams) (CoalLog, error) {
	row := q.db.QueryRowContext(ctx, createCoalLog,
		arg.TruckID, arg.DriverID, arg.LogDate, arg.Trips, arg.TonnageKg, arg.Site, arg.Destination)
	var c CoalLog
	err := row.Scan(&c.ID, &c.TruckID, &c.DriverID, &c.LogDate, &c.Trips, &c.TonnageKg, &c.Site, &c.Destination, &c.CreatedAt)
	return c, err
}

const listCoalLogsBetween = `
SELECT ` + coalLogColumns + `
FROM coal_logs
WHERE log_date >= ? AND log_date <= ? AND deleted_at IS NULL
ORDER BY log_date, id
`

func (q *Queries) ListCoalLogsBetween(ctx context.Context, from, to string) ([]CoalLog, error) {
	rows, err := q.db.QueryContext(ctx, listCoalLogsBetween, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CoalLog
	for rows.Next() {
		var c CoalLog
		if err := rows.Scan(&c.ID, &c.TruckID, &c.DriverID, &c.LogDate, &c.Trips, &c.TonnageKg, &c.Site, &c.Destination, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const deleteCoalLog = `
UPDATE coal_logs SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL
`

func (q *Queries) DeleteCoalLog(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteCoalLog, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type MiningLog struct {
	ID        int64
	LogDate   string
	Site      string
	Material  string
	OutputKg  int64
	CreatedAt time.Time
}

const miningLogColumns = `id, log_date, site, material, output_kg, created_at`

const createMiningLog = `
INSERT INTO mining_logs (log_date, site, material, output_kg)
VALUES (?, ?, ?, ?)
RETURNING ` + miningLogColumns

type CreateMiningLogParams struct {
	LogDate  string
	Site     string
	Material string
	OutputKg int64
}

func (q *Queries) CreateMiningLog(ctx context.Context, arg CreateMiningLogParams) (MiningLog, error) {
	row := q.db.QueryRowContext(ctx, createMiningLog, arg.LogDate, arg.Site, arg.Material, arg.OutputKg)
	var m MiningLog
	err := row.Scan(&m.ID, &m.LogDate, &m.Site, &m.Material, &m.OutputKg, &m.CreatedAt)
	return m, err
}

const listMiningLogsBetween = `
SELECT ` + miningLogColumns + `
FROM mining_logs
WHERE log_date >= ? AND log_date <= ? AND deleted_at IS NULL
ORDER BY log_date, id
`

func (q *Queries) ListMiningLogsBetween(ctx context.Context, from, to string) ([]MiningLog, error) {
	rows, err := q.db.QueryContext(ctx, listMiningLogsBetween, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MiningLog
	for rows.Next() {
		var m MiningLog
		if err := rows.Scan(&m.ID, &m.LogDate, &m.Site, &m.Material, &m.OutputKg, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const deleteMiningLog = `
UPDATE mining_logs SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL
`

func (q *Queries) DeleteMiningLog(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteMiningLog, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
