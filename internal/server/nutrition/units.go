// Package nutrition holds the calorie and macro-nutrient arithmetic (КБЖУ):
// unit conversion to the reference unit, per-line scaling, sums, deltas
// against goals and a simple trend projection. Everything here is pure.
package nutrition

import (
	"strings"

	"github.com/dmitrijs2005/fitmacro/internal/common"
)

// ReferenceGrams is the amount every catalog value is normalised to.
const ReferenceGrams = 100.0

// Unit is a quantity unit a diary entry can be logged in.
type Unit string

const (
	Gram       Unit = "g"
	Kilogram   Unit = "kg"
	Milligram  Unit = "mg"
	Milliliter Unit = "ml"
	Liter      Unit = "l"
	Ounce      Unit = "oz"
	Pound      Unit = "lb"
)

// Liquids are counted at water density (1 g/ml).
var gramsPerUnit = map[Unit]float64{
	Gram:       1,
	Kilogram:   1000,
	Milligram:  0.001,
	Milliliter: 1,
	Liter:      1000,
	Ounce:      28.349523125,
	Pound:      453.59237,
}

var unitAliases = map[string]Unit{
	"":            Gram,
	"g":           Gram,
	"gr":          Gram,
	"gram":        Gram,
	"grams":       Gram,
	"г":           Gram,
	"гр":          Gram,
	"kg":          Kilogram,
	"kilogram":    Kilogram,
	"kilograms":   Kilogram,
	"кг":          Kilogram,
	"mg":          Milligram,
	"milligram":   Milligram,
	"milligrams":  Milligram,
	"ml":          Milliliter,
	"milliliter":  Milliliter,
	"milliliters": Milliliter,
	"мл":          Milliliter,
	"l":           Liter,
	"liter":       Liter,
	"liters":      Liter,
	"л":           Liter,
	"oz":          Ounce,
	"ounce":       Ounce,
	"ounces":      Ounce,
	"lb":          Pound,
	"lbs":         Pound,
	"pound":       Pound,
	"pounds":      Pound,
}

// ParseUnit normalises a user supplied unit. An empty string means grams.
func ParseUnit(s string) (Unit, error) {
	u, ok := unitAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", &common.UnsupportedUnitError{Unit: s}
	}
	return u, nil
}

// ToGrams converts quantity q in unit u into grams.
func ToGrams(q float64, u Unit) (float64, error) {
	factor, ok := gramsPerUnit[u]
	if !ok {
		return 0, &common.UnsupportedUnitError{Unit: string(u)}
	}
	return q * factor, nil
}

// Supported reports whether u has a known conversion factor.
func Supported(u Unit) bool {
	_, ok := gramsPerUnit[u]
	return ok
}
