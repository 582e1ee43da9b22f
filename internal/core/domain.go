package core

import (
	"errors"
	"strings"
	"time"
)

// Ledger entry kinds for the diesel-party ledger.
const (
	Borrow       LedgerKind = "borrow"
	SettleCash   LedgerKind = "settle_cash"
	SettleLiters LedgerKind = "settle_liters"
	Received     LedgerKind = "received"
)

type (
	LedgerKind string

	Date struct {
		time.Time
	}

	// Money is an amount in paise. All arithmetic happens on paise;
	// rupees only exist at the formatting boundary.
	Money struct {
		Paise int64
	}

	// Volume is a diesel quantity in milliliters.
	Volume struct {
		Milli int64
	}

	Truck struct {
		ID           int64
		Registration string
		Model        string
		CapacityTons int
		Active       bool
	}

	Driver struct {
		ID        int64
		Name      string
		Phone     string
		LicenseNo string
		TruckID   int64 // 0 when unassigned
	}

	// FuelLog is one diesel fill for a truck. Source distinguishes pump
	// fills from rows bridged out of the party ledger.
	FuelLog struct {
		ID            int64
		TruckID       int64
		DriverID      int64
		Date          Date
		Quantity      Volume
		Cost          Money
		OdometerKm    int64
		Station       string
		Source        string // "pump" or "party_bridge"
		LedgerEntryID int64  // set when Source == "party_bridge"
	}

	// CoalLog is one day of haulage trips for a truck.
	CoalLog struct {
		ID          int64
		TruckID     int64
		DriverID    int64
		Date        Date
		Trips       int
		TonnageKg   int64
		Site        string
		Destination string
	}

	// MiningLog is one day of raised output at a site.
	MiningLog struct {
		ID       int64
		Date     Date
		Site     string
		Material string
		OutputKg int64
	}

	// Party is an external diesel counterparty (another contractor,
	// a pump owner, a site office).
	Party struct {
		ID    int64
		Name  string
		Phone string
	}

	// LedgerEntry is one diesel-party transaction. Depending on Kind it
	// carries a volume, an amount, or both:
	//   borrow, settle_liters, received: Quantity required
	//   settle_cash: Amount required, Rate used to convert to liters
	LedgerEntry struct {
		ID      int64
		PartyID int64
		Date    Date
		Kind    LedgerKind
		// Quantity of diesel moved, zero for pure cash settlements.
		Quantity Volume
		// Amount of cash moved, zero for pure liter movements.
		Amount Money
		// Rate in paise per liter, used to convert cash to liters.
		Rate    int64
		TruckID int64 // optional: truck that received bridged diesel
		Note    string
	}
)

const (
	FuelSourcePump   = "pump"
	FuelSourceBridge = "party_bridge"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidVolume   = errors.New("invalid volume")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyName       = errors.New("empty name")
	ErrMissingTruck    = errors.New("missing truck")
	ErrMissingParty    = errors.New("missing party")
	ErrInvalidKind     = errors.New("invalid ledger kind")
	ErrMissingQuantity = errors.New("missing quantity")
)

// NewDate builds a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Year and Month are exposed for window grouping.
func (d Date) Year() int  { return d.Time.Year() }
func (d Date) Month() int { return int(d.Time.Month()) }
func (d Date) Day() int   { return d.Time.Day() }

func (m Money) Validate() error {
	if m.Paise <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (v Volume) Validate() error {
	if v.Milli <= 0 {
		return ErrInvalidVolume
	}
	return nil
}

// IsBridged reports whether entries of this kind move diesel into our own
// stock and therefore mirror into the fuel-tracking table.
func (k LedgerKind) IsBridged() bool {
	return k == SettleLiters || k == Received
}

func (k LedgerKind) Valid() bool {
	switch k {
	case Borrow, SettleCash, SettleLiters, Received:
		return true
	}
	return false
}

func (t Truck) Validate() error {
	if strings.TrimSpace(t.Registration) == "" {
		return errors.New("empty registration")
	}
	if t.CapacityTons < 0 {
		return errors.New("negative capacity")
	}
	return nil
}

func (d Driver) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if len(d.Name) > 120 {
		return errors.New("name too long (max 120 characters)")
	}
	return nil
}

func (f FuelLog) Validate() error {
	if f.TruckID <= 0 {
		return ErrMissingTruck
	}
	if err := f.Date.Validate(); err != nil {
		return err
	}
	if err := f.Quantity.Validate(); err != nil {
		return err
	}
	// Cost is optional for bridged rows: the ledger entry carries the money
	// side of the transaction.
	if f.Source != FuelSourceBridge {
		if err := f.Cost.Validate(); err != nil {
			return err
		}
	}
	if f.OdometerKm < 0 {
		return errors.New("negative odometer")
	}
	return nil
}

func (c CoalLog) Validate() error {
	if c.TruckID <= 0 {
		return ErrMissingTruck
	}
	if err := c.Date.Validate(); err != nil {
		return err
	}
	if c.Trips <= 0 {
		return errors.New("trips must be positive")
	}
	if c.TonnageKg <= 0 {
		return errors.New("tonnage must be positive")
	}
	return nil
}

func (m MiningLog) Validate() error {
	if err := m.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(m.Site) == "" {
		return errors.New("empty site")
	}
	if m.OutputKg <= 0 {
		return errors.New("output must be positive")
	}
	return nil
}

func (p Party) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if len(p.Name) > 120 {
		return errors.New("name too long (max 120 characters)")
	}
	return nil
}

func (e LedgerEntry) Validate() error {
	if e.PartyID <= 0 {
		return ErrMissingParty
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !e.Kind.Valid() {
		return ErrInvalidKind
	}
	switch e.Kind {
	case SettleCash:
		if err := e.Amount.Validate(); err != nil {
			return err
		}
		if e.Rate < 0 {
			return errors.New("negative rate")
		}
	default:
		if err := e.Quantity.Validate(); err != nil {
			return ErrMissingQuantity
		}
	}
	if len(e.Note) > 200 {
		return errors.New("note too long (max 200 characters)")
	}
	return nil
}
