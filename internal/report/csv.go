package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/turmeiro/boxtally/internal/week"
)

// CSV export uses semicolon separators and decimal commas, the dialect
// Brazilian spreadsheet installs open without an import wizard.

const csvSeparator = ";"

func csvMoney(d decimal.Decimal) string {
	return strings.ReplaceAll(d.StringFixed(2), ".", ",")
}

// csvDate renders an ISO date as dd/MM/yyyy; malformed dates pass through.
func csvDate(iso string) string {
	t, err := time.Parse(week.DateLayout, iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}

// DayCSV renders a day summary's merged picker rows.
func DayCSV(s *DaySummary) string {
	var b strings.Builder
	writeRecord(&b, "Colhedor", "Caixas", "Valor")
	for _, row := range s.Pickers {
		writeRecord(&b, displayName(row.Name, row.Nickname), fmt.Sprintf("%d", row.Boxes), csvMoney(row.Value))
	}
	writeRecord(&b, "TOTAL GERAL", fmt.Sprintf("%d", s.TotalBoxes), csvMoney(s.TotalValue))
	return b.String()
}

// WeekCSV renders one line per picker per worked date, ordered the way the
// week view lists pickers, followed by the grand total line.
func WeekCSV(s *WeekSummary) string {
	var b strings.Builder
	writeRecord(&b, "Data", "Dia", "Colhedor", "Caixas", "Valor")
	for _, p := range s.Pickers {
		for _, d := range p.Days {
			writeRecord(&b,
				csvDate(d.Date),
				d.WeekDay,
				displayName(p.Name, p.Nickname),
				fmt.Sprintf("%d", d.Boxes),
				csvMoney(d.Value),
			)
		}
	}
	writeRecord(&b, "", "", "TOTAL GERAL", fmt.Sprintf("%d", s.TotalBoxes), csvMoney(s.TotalValue))
	return b.String()
}

func displayName(name, nickname string) string {
	if nickname != "" {
		return fmt.Sprintf("%s (%s)", name, nickname)
	}
	return name
}

func writeRecord(b *strings.Builder, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteString(csvSeparator)
		}
		b.WriteString(strings.ReplaceAll(f, csvSeparator, ","))
	}
	b.WriteString("\n")
}
