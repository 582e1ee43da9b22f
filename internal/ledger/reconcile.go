// Package ledger reconciles diesel-party transactions into per-party
// statements: how much diesel each party owes us (or we owe them), how much
// cash has moved against it, and the running balance after every entry.
package ledger

import (
	"sort"

	"haulbook/internal/core"
)

// Side of a statement line: whether the entry increased or decreased what
// the party owes us.
const (
	SideDebit  = "debit"
	SideCredit = "credit"
)

type (
	// Line is one ledger entry resolved into liters, with the running
	// balance after applying it.
	Line struct {
		Entry core.LedgerEntry
		Side  string
		// LitersMilli the entry contributes on its side. For cash
		// settlements this is the amount converted at the entry rate.
		LitersMilli int64
		// CashPaise moved by this entry (settle_cash only).
		CashPaise int64
		// BalanceMilli after this line; positive means the party owes us.
		BalanceMilli int64
	}

	// Statement is the reconciled view of one party's ledger.
	Statement struct {
		PartyID     int64
		Lines       []Line
		DebitMilli  int64
		CreditMilli int64
		// NetMilli = DebitMilli - CreditMilli. Positive: party owes us
		// diesel; negative: we owe the party.
		NetMilli  int64
		CashPaise int64
		// Skipped counts entries dropped for missing fields.
		Skipped int
	}
)

// Reconcile builds the statement for one party's entries. Entries are
// processed in date order (id breaks ties) regardless of input order.
// defaultRatePaise is used to convert cash settlements that carry no rate;
// when both are zero the cash is counted but contributes no liter credit.
func Reconcile(partyID int64, entries []core.LedgerEntry, defaultRatePaise int64) Statement {
	st := Statement{PartyID: partyID}

	sorted := make([]core.LedgerEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date.Time) {
			return sorted[i].Date.Before(sorted[j].Date.Time)
		}
		return sorted[i].ID < sorted[j].ID
	})

	for _, e := range sorted {
		line, ok := resolve(e, defaultRatePaise)
		if !ok {
			st.Skipped++
			continue
		}
		switch line.Side {
		case SideDebit:
			st.DebitMilli += line.LitersMilli
		case SideCredit:
			st.CreditMilli += line.LitersMilli
		}
		st.CashPaise += line.CashPaise
		st.NetMilli = st.DebitMilli - st.CreditMilli
		line.BalanceMilli = st.NetMilli
		st.Lines = append(st.Lines, line)
	}

	return st
}

// resolve maps one entry to its statement side and liter value. Entries with
// missing fields are skipped rather than failing the whole statement.
func resolve(e core.LedgerEntry, defaultRatePaise int64) (Line, bool) {
	switch e.Kind {
	case core.Borrow:
		if e.Quantity.Milli <= 0 {
			return Line{}, false
		}
		return Line{Entry: e, Side: SideDebit, LitersMilli: e.Quantity.Milli}, true

	case core.SettleLiters, core.Received:
		if e.Quantity.Milli <= 0 {
			return Line{}, false
		}
		return Line{Entry: e, Side: SideCredit, LitersMilli: e.Quantity.Milli}, true

	case core.SettleCash:
		if e.Amount.Paise <= 0 {
			return Line{}, false
		}
		rate := e.Rate
		if rate == 0 {
			rate = defaultRatePaise
		}
		line := Line{Entry: e, Side: SideCredit, CashPaise: e.Amount.Paise}
		if rate > 0 {
			// paise / (paise per liter) -> liters, kept in milliliters.
			line.LitersMilli = e.Amount.Paise * 1000 / rate
		}
		return line, true
	}

	return Line{}, false
}

// BridgeFuelLog derives the fuel-tracking row mirrored from a bridged ledger
// entry. Only settle_liters and received entries move diesel into our stock.
func BridgeFuelLog(e core.LedgerEntry) (core.FuelLog, bool) {
	if !e.Kind.IsBridged() || e.Quantity.Milli <= 0 {
		return core.FuelLog{}, false
	}
	return core.FuelLog{
		TruckID:       e.TruckID,
		Date:          e.Date,
		Quantity:      e.Quantity,
		Source:        core.FuelSourceBridge,
		LedgerEntryID: e.ID,
		Station:       "party ledger",
	}, true
}
