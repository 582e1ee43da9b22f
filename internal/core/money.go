// Package core provides money and volume parsing utilities.
//
// Amounts arrive from clients as decimal strings ("1250.50" rupees,
// "85.250" liters) and are stored as integers (paise, milliliters).
package core

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDecimalToPaise converts a decimal rupee string to paise with half-up
// rounding on the third decimal digit. Both dot and comma separators are
// accepted. Only positive amounts are valid.
//
//	ParseDecimalToPaise("12.34")  -> 1234, nil
//	ParseDecimalToPaise("12,345") -> 1234, nil (rounds down)
//	ParseDecimalToPaise("12.346") -> 1235, nil (rounds up)
func ParseDecimalToPaise(s string) (int64, error) {
	return parseScaled(s, 2, ErrInvalidAmount)
}

// ParseLitersToMilli converts a decimal liter string to milliliters with
// half-up rounding on the fourth decimal digit.
func ParseLitersToMilli(s string) (int64, error) {
	return parseScaled(s, 3, ErrInvalidVolume)
}

// parseScaled parses a positive decimal into an integer scaled by 10^digits.
func parseScaled(s string, digits int, invalid error) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, invalid
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, invalid
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, invalid
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if r < '0' || r > '9' {
			return 0, invalid
		}
	}
	for _, r := range fracPart {
		if r < '0' || r > '9' {
			return 0, invalid
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, invalid
	}
	scale := int64(1)
	for i := 0; i < digits; i++ {
		scale *= 10
	}
	if iv > (1<<63-1)/scale {
		return 0, invalid
	}
	var frac int64
	mult := scale / 10
	for i := 0; i < digits && i < len(fracPart); i++ {
		frac += int64(fracPart[i]-'0') * mult
		mult /= 10
	}
	if len(fracPart) > digits && fracPart[digits] >= '5' {
		frac++
	}
	out := iv*scale + frac
	if out <= 0 {
		return 0, invalid
	}
	return out, nil
}

// Rupees formats paise as a rupee string ("₹1250.50").
func (m Money) Rupees() string {
	p := m.Paise
	neg := p < 0
	if neg {
		p = -p
	}
	s := fmt.Sprintf("₹%d.%02d", p/100, p%100)
	if neg {
		return "-" + s
	}
	return s
}

// Liters formats milliliters as a liter string with up to three decimals,
// trailing zeros trimmed ("85.25 L").
func (v Volume) Liters() string {
	m := v.Milli
	neg := m < 0
	if neg {
		m = -m
	}
	s := fmt.Sprintf("%d.%03d", m/1000, m%1000)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if neg {
		return "-" + s + " L"
	}
	return s + " L"
}
