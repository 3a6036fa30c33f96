// Package foodapi is a small OpenFoodFacts client used to search and import
// packaged foods into the local catalog.
package foodapi

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/fitmacro/internal/server/nutrition"
)

// SourceName is recorded as food_items.source for imported rows.
const SourceName = "openfoodfacts"

const unnamedProduct = "Без названия"

// kJ per kcal, used when a product only reports energy in kJ.
const kjPerKcal = 4.184

// Product is a normalised OpenFoodFacts product. Nil values mean the
// product did not report that nutrient.
type Product struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Brand   string   `json:"brand"`
	Kcal    *float64 `json:"kcal_100g"`
	Protein *float64 `json:"protein_100g"`
	Fat     *float64 `json:"fat_100g"`
	Carb    *float64 `json:"carb_100g"`
}

// Per100g returns the nutrition values with missing macros counted as zero.
// ok is false when the product has no energy value at all.
func (p Product) Per100g() (t nutrition.Totals, ok bool) {
	val := func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v
	}
	return nutrition.Totals{
		Kcal:    val(p.Kcal),
		Protein: val(p.Protein),
		Fat:     val(p.Fat),
		Carb:    val(p.Carb),
	}, p.Kcal != nil
}

// flexFloat decodes numbers that OpenFoodFacts sometimes sends as strings.
// Anything unparseable decodes as absent.
type flexFloat struct {
	v *float64
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	switch x := raw.(type) {
	case float64:
		f.v = &x
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(x, ",", "."))
		if s == "" {
			return nil
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			f.v = &n
		}
	}
	return nil
}

type nutriments struct {
	EnergyKcal flexFloat `json:"energy-kcal_100g"`
	EnergyKJ   flexFloat `json:"energy-kj_100g"`
	Proteins   flexFloat `json:"proteins_100g"`
	Fat        flexFloat `json:"fat_100g"`
	Carbs      flexFloat `json:"carbohydrates_100g"`
}

type rawProduct struct {
	Code        json.RawMessage `json:"code"`
	ProductName string          `json:"product_name"`
	GenericName string          `json:"generic_name"`
	Brands      string          `json:"brands"`
	Nutriments  nutriments      `json:"nutriments"`
}

// codeString accepts a code sent either as a JSON string or number.
func codeString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func (r rawProduct) normalise(code string) Product {
	name := strings.TrimSpace(r.ProductName)
	if name == "" {
		name = strings.TrimSpace(r.GenericName)
	}
	if name == "" {
		name = unnamedProduct
	}

	kcal := r.Nutriments.EnergyKcal.v
	if kcal == nil && r.Nutriments.EnergyKJ.v != nil {
		k := *r.Nutriments.EnergyKJ.v / kjPerKcal
		kcal = &k
	}

	return Product{
		Code:    code,
		Name:    name,
		Brand:   strings.TrimSpace(r.Brands),
		Kcal:    kcal,
		Protein: r.Nutriments.Proteins.v,
		Fat:     r.Nutriments.Fat.v,
		Carb:    r.Nutriments.Carbs.v,
	}
}
