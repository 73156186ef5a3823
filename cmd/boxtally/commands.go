package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/turmeiro/boxtally/internal/errors"
	"github.com/turmeiro/boxtally/internal/events"
	"github.com/turmeiro/boxtally/internal/metrics"
	"github.com/turmeiro/boxtally/internal/report"
	"github.com/turmeiro/boxtally/internal/store"
)

func fmtMoney(d decimal.Decimal) string {
	return "R$ " + strings.ReplaceAll(d.StringFixed(2), ".", ",")
}

func activeFlag(active bool) string {
	if active {
		return ""
	}
	return " (oculto)"
}

func (a *app) runPickerAdd(ctx context.Context) error {
	p, err := a.roster.AddPicker(ctx, CLI.Picker.Add.Name, CLI.Picker.Add.Nickname)
	if err != nil {
		return err
	}
	fmt.Printf("picker %s  %s\n", p.ID, p.Name)
	return nil
}

func (a *app) runPickerRename(ctx context.Context) error {
	p, err := a.roster.RenamePicker(ctx, CLI.Picker.Rename.ID, CLI.Picker.Rename.Name, CLI.Picker.Rename.Nickname)
	if err != nil {
		return err
	}
	fmt.Printf("picker %s  %s\n", p.ID, p.Name)
	return nil
}

func (a *app) runPickerActive(ctx context.Context, id string, active bool) error {
	_, err := a.roster.SetPickerActive(ctx, id, active)
	return err
}

func (a *app) runPickerList(ctx context.Context) error {
	pickers, err := a.roster.ListPickers(ctx, !CLI.Picker.List.All)
	if err != nil {
		return err
	}
	for _, p := range pickers {
		name := p.Name
		if p.Nickname != "" {
			name = fmt.Sprintf("%s (%s)", p.Name, p.Nickname)
		}
		fmt.Printf("%s  %s%s\n", p.ID, name, activeFlag(p.Active))
	}
	return nil
}

func (a *app) runOrchardAdd(ctx context.Context) error {
	o, err := a.roster.AddOrchard(ctx, CLI.Orchard.Add.Name)
	if err != nil {
		return err
	}
	fmt.Printf("orchard %s  %s\n", o.ID, o.Name)
	return nil
}

func (a *app) runOrchardRename(ctx context.Context) error {
	o, err := a.roster.RenameOrchard(ctx, CLI.Orchard.Rename.ID, CLI.Orchard.Rename.Name)
	if err != nil {
		return err
	}
	fmt.Printf("orchard %s  %s\n", o.ID, o.Name)
	return nil
}

func (a *app) runOrchardActive(ctx context.Context, id string, active bool) error {
	_, err := a.roster.SetOrchardActive(ctx, id, active)
	return err
}

func (a *app) runOrchardList(ctx context.Context) error {
	orchards, err := a.roster.ListOrchards(ctx, !CLI.Orchard.List.All)
	if err != nil {
		return err
	}
	for _, o := range orchards {
		fmt.Printf("%s  %s%s\n", o.ID, o.Name, activeFlag(o.Active))
	}
	return nil
}

func (a *app) runDayNew(ctx context.Context) error {
	price, err := parsePrice(CLI.Day.New.Price)
	if err != nil {
		return err
	}
	wd, first, err := a.days.CreateWorkday(ctx, CLI.Day.New.Date, CLI.Day.New.Pickers, CLI.Day.New.Orchard, price)
	if err != nil {
		return err
	}
	fmt.Printf("workday %s  %s\n", wd.ID, wd.Date)
	fmt.Printf("shift 1  %s  %s/caixa\n", first.OrchardNameSnapshot, fmtMoney(first.PricePerBox))
	return nil
}

func (a *app) runDayShow(ctx context.Context, date string) error {
	wd, err := a.workdayFor(ctx, date)
	if err != nil {
		return err
	}
	day, err := a.engine.DaySummary(ctx, wd.ID)
	if err != nil {
		return err
	}
	printDay(day)
	return nil
}

func (a *app) runDayClose(ctx context.Context) error {
	wd, err := a.workdayFor(ctx, CLI.Day.Close.Date)
	if err != nil {
		return err
	}
	_, err = a.days.CloseWorkday(ctx, wd.ID)
	return err
}

func (a *app) runDayReopen(ctx context.Context) error {
	wd, err := a.workdayFor(ctx, CLI.Day.Reopen.Date)
	if err != nil {
		return err
	}
	_, err = a.days.ReopenWorkday(ctx, wd.ID)
	return err
}

func (a *app) runDayOpen(ctx context.Context) error {
	open, err := a.store.OpenWorkdays(ctx)
	if err != nil {
		return err
	}
	if len(open) == 0 {
		fmt.Println("nenhum dia aberto")
		return nil
	}
	for _, wd := range open {
		fmt.Printf("%s  %s  %d colhedores\n", wd.ID, wd.Date, len(wd.PickerIDs))
	}
	return nil
}

func (a *app) runShiftNew(ctx context.Context) error {
	wd, err := a.workdayFor(ctx, CLI.Shift.New.Date)
	if err != nil {
		return err
	}
	price, err := parsePrice(CLI.Shift.New.Price)
	if err != nil {
		return err
	}
	sh, err := a.days.CreateShift(ctx, wd.ID, CLI.Shift.New.Orchard, price)
	if err != nil {
		return err
	}
	n, err := a.days.ShiftNumber(ctx, wd.ID, sh.ID)
	if err != nil {
		return err
	}
	fmt.Printf("shift %d  %s  %s/caixa\n", n, sh.OrchardNameSnapshot, fmtMoney(sh.PricePerBox))
	return nil
}

func (a *app) runShiftBoard(ctx context.Context) error {
	wd, err := a.workdayFor(ctx, CLI.Shift.Board.Date)
	if err != nil {
		return err
	}
	active, err := a.days.ActiveShift(ctx, wd.ID)
	if err != nil {
		return err
	}
	if active == nil {
		return errors.NotFound("shift", wd.Date)
	}

	order := report.BoardByName
	if CLI.Shift.Board.ByBoxes {
		order = report.BoardByBoxes
	}
	board, err := a.engine.ShiftBoard(ctx, active.ID, CLI.Shift.Board.Filter, order)
	if err != nil {
		return err
	}

	status := ""
	if board.Closed {
		status = "  [fechado]"
	}
	fmt.Printf("%s  shift %d  %s%s\n", wd.Date, board.ShiftNumber, board.OrchardName, status)
	for _, row := range board.Rows {
		fmt.Printf("  %-30s %5d\n", row.Name, row.Boxes)
	}
	fmt.Printf("  %-30s %5d\n", "TOTAL", board.TotalBoxes)
	return nil
}

func (a *app) runMark(ctx context.Context) error {
	wd, err := a.workdayFor(ctx, CLI.Mark.Date)
	if err != nil {
		return err
	}
	picker, err := a.pickerFor(ctx, CLI.Mark.Picker)
	if err != nil {
		return err
	}
	active, err := a.days.ActiveShift(ctx, wd.ID)
	if err != nil {
		return err
	}
	if active == nil {
		return errors.NotFound("shift", wd.Date)
	}

	counts, err := a.store.CountsByShift(ctx, active.ID)
	if err != nil {
		return err
	}
	for _, c := range counts {
		if c.PickerID == picker.ID {
			updated, err := a.days.AdjustCount(ctx, c.ID, CLI.Mark.Delta)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d caixas\n", picker.Name, updated.Boxes)
			return nil
		}
	}
	return errors.Validation(picker.Name + " is not on this workday's crew")
}

func (a *app) runCountAdjust(ctx context.Context) error {
	c, err := a.days.AdjustCount(ctx, CLI.Count.Adjust.CountID, CLI.Count.Adjust.Delta)
	if err != nil {
		return err
	}
	fmt.Printf("%d caixas\n", c.Boxes)
	return nil
}

func (a *app) runCountReset(ctx context.Context) error {
	_, err := a.days.ResetCount(ctx, CLI.Count.Reset.CountID)
	return err
}

func (a *app) runReportDay(ctx context.Context) error {
	wd, err := a.workdayFor(ctx, CLI.Report.Day.Date)
	if err != nil {
		return err
	}
	day, err := a.engine.DaySummary(ctx, wd.ID)
	if err != nil {
		return err
	}
	if CLI.Report.Day.CSV {
		fmt.Print(report.DayCSV(day))
		return nil
	}
	printDay(day)
	return nil
}

func (a *app) runReportWeek(ctx context.Context) error {
	sum, err := a.engine.WeekSummaryForDate(ctx, CLI.Report.Week.Date)
	if err != nil {
		return err
	}
	if CLI.Report.Week.CSV {
		fmt.Print(report.WeekCSV(sum))
		return nil
	}
	printWeek(sum)
	return nil
}

func (a *app) runWeekClose(ctx context.Context) error {
	st, err := a.weeks.Close(ctx, CLI.Week.Close.Date, CLI.Week.Close.Note)
	if err != nil {
		return err
	}
	fmt.Printf("semana %s a %s fechada: %d caixas, %s\n",
		st.Window.Start, st.Window.End, st.Snapshot.TotalBoxes, fmtMoney(st.Snapshot.TotalValue))
	if st.Snapshot.OpenWorkdays > 0 {
		fmt.Printf("atenção: %d dia(s) ainda abertos ficaram fora do total\n", st.Snapshot.OpenWorkdays)
	}
	return nil
}

func (a *app) runWeekReopen(ctx context.Context) error {
	st, err := a.weeks.Reopen(ctx, CLI.Week.Reopen.Date)
	if err != nil {
		return err
	}
	fmt.Printf("semana %s a %s reaberta\n", st.Window.Start, st.Window.End)
	return nil
}

func (a *app) runWeekStatus(ctx context.Context) error {
	st, err := a.weeks.Status(ctx, CLI.Week.Status.Date)
	if err != nil {
		return err
	}
	state := "aberta"
	if st.Closed {
		state = "fechada"
	}
	fmt.Printf("semana %s a %s: %s\n", st.Window.Start, st.Window.End, state)
	if st.Note != "" {
		fmt.Printf("nota: %s\n", st.Note)
	}
	if st.Snapshot != nil {
		fmt.Printf("último fechamento: %d caixas, %s\n",
			st.Snapshot.TotalBoxes, fmtMoney(st.Snapshot.TotalValue))
	}
	return nil
}

func (a *app) runExport(ctx context.Context) error {
	dump, err := a.store.ExportAll(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return errors.Internal("encode export", err)
	}
	data = append(data, '\n')

	if CLI.Export.File == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(CLI.Export.File, data, 0o644); err != nil {
		return errors.Internal("write export file", err)
	}
	return nil
}

func (a *app) runImport(ctx context.Context) error {
	data, err := os.ReadFile(CLI.Import.File)
	if err != nil {
		return errors.ValidationField("file", "cannot read "+CLI.Import.File)
	}
	var dump store.Dump
	if err := json.Unmarshal(data, &dump); err != nil {
		return errors.ValidationField("file", "not a valid export document")
	}

	if !CLI.Import.Merge {
		if err := a.store.Wipe(ctx); err != nil {
			return err
		}
	}
	if err := a.store.ImportAll(ctx, &dump); err != nil {
		return err
	}
	_ = a.bus.Publish(ctx, events.Change{Kind: events.KindBulk})
	return nil
}

func (a *app) runReset(ctx context.Context) error {
	if !CLI.Reset.Force {
		return errors.Validation("reset deletes every record; pass --force to confirm")
	}
	// Second confirmation: typed phrase, matching the app's destructive-action
	// dialog.
	fmt.Print("digite APAGAR para confirmar: ")
	var confirm string
	if _, err := fmt.Scanln(&confirm); err != nil || confirm != "APAGAR" {
		return errors.Validation("reset aborted")
	}
	if err := a.store.Wipe(ctx); err != nil {
		return err
	}
	_ = a.bus.Publish(ctx, events.Change{Kind: events.KindBulk})
	return nil
}

func (a *app) runStats() error {
	out, err := metrics.DumpText(a.registry)
	if err != nil {
		return errors.Internal("gather metrics", err)
	}
	if out != "" {
		fmt.Println(out)
	}
	return nil
}

func printDay(day *report.DaySummary) {
	status := "aberto"
	if day.Closed {
		status = "fechado"
	}
	fmt.Printf("%s (%s)  %s\n", day.Date, day.WeekDay, status)

	for _, sh := range day.Shifts {
		fmt.Printf("\nshift %d  %s  %s/caixa\n", sh.ShiftNumber, sh.OrchardName, fmtMoney(sh.PricePerBox))
		for _, row := range sh.Rows {
			fmt.Printf("  %-30s %5d  %s\n", row.Name, row.Boxes, fmtMoney(row.Value))
		}
	}

	if len(day.Orchards) > 1 {
		fmt.Println("\npor talhão:")
		for _, o := range day.Orchards {
			fmt.Printf("  %-30s %5d  %s\n", o.OrchardName, o.TotalBoxes, fmtMoney(o.TotalValue))
		}
	}

	fmt.Println("\ntotal do dia:")
	for _, row := range day.Pickers {
		fmt.Printf("  %-30s %5d  %s\n", row.Name, row.Boxes, fmtMoney(row.Value))
	}
	fmt.Printf("  %-30s %5d  %s\n", "TOTAL", day.TotalBoxes, fmtMoney(day.TotalValue))
}

func printWeek(sum *report.WeekSummary) {
	fmt.Printf("semana %s a %s  (%d dia(s) fechados", sum.WeekStart, sum.WeekEnd, sum.ClosedWorkdays)
	if sum.OpenWorkdays > 0 {
		fmt.Printf(", %d abertos fora do total", sum.OpenWorkdays)
	}
	fmt.Println(")")

	for _, day := range sum.Days {
		fmt.Printf("\n%s (%s)  %d caixas  %s\n", day.Date, day.WeekDay, day.TotalBoxes, fmtMoney(day.TotalValue))
		for _, o := range day.Orchards {
			fmt.Printf("  %-30s %5d  %s\n", o.OrchardName, o.TotalBoxes, fmtMoney(o.TotalValue))
		}
	}

	fmt.Println("\npor colhedor:")
	for _, p := range sum.Pickers {
		fmt.Printf("  %-30s %5d  %s\n", p.Name, p.TotalBoxes, fmtMoney(p.TotalValue))
		for _, d := range p.Days {
			fmt.Printf("    %s  %5d  %s\n", d.Date, d.Boxes, fmtMoney(d.Value))
		}
	}
	fmt.Printf("\n  %-30s %5d  %s\n", "TOTAL", sum.TotalBoxes, fmtMoney(sum.TotalValue))
}
