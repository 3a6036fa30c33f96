// Package export writes diary exports as CSV and stores them in S3-compatible
// object storage behind presigned download links.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/dmitrijs2005/fitmacro/internal/server/models"
	"github.com/dmitrijs2005/fitmacro/internal/timex"
)

// Header is the first CSV row.
var Header = []string{"date", "time", "meal", "food", "brand", "quantity", "unit", "kcal", "protein", "fat", "carb"}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteDiaryCSV writes one row per diary line. Totals must already be computed.
func WriteDiaryCSV(w io.Writer, lines []*models.DiaryLine) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return err
	}

	for _, l := range lines {
		t := l.Totals.Round(2)
		row := []string{
			timex.FormatDate(l.Date),
			l.Time,
			string(l.Meal),
			l.FoodName,
			l.FoodBrand,
			num(l.Quantity),
			string(l.Unit),
			num(t.Kcal),
			num(t.Protein),
			num(t.Fat),
			num(t.Carb),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
