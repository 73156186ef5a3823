package main

import (
	"context"
	"strings"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/turmeiro/boxtally/internal/closure"
	"github.com/turmeiro/boxtally/internal/config"
	"github.com/turmeiro/boxtally/internal/errors"
	"github.com/turmeiro/boxtally/internal/events"
	"github.com/turmeiro/boxtally/internal/metrics"
	"github.com/turmeiro/boxtally/internal/model"
	"github.com/turmeiro/boxtally/internal/registry"
	"github.com/turmeiro/boxtally/internal/report"
	"github.com/turmeiro/boxtally/internal/store"
	"github.com/turmeiro/boxtally/internal/workday"
)

// app wires the engine components for one CLI invocation.
type app struct {
	cfg      config.Config
	store    *store.SQLiteStore
	bus      *events.Bus
	roster   *registry.Registry
	days     *workday.Manager
	engine   *report.Engine
	weeks    *closure.Manager
	registry *prom.Registry
}

func newApp(cfg config.Config) (*app, error) {
	tag, err := cfg.LanguageTag()
	if err != nil {
		return nil, err
	}

	st, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	promReg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(promReg)
	bus := events.NewBus()
	engine := report.NewEngine(st, tag)

	return &app{
		cfg:      cfg,
		store:    st,
		bus:      bus,
		roster:   registry.NewRegistry(st, bus),
		days:     workday.NewManager(st, bus, rec),
		engine:   engine,
		weeks:    closure.NewManager(st, engine, bus, rec),
		registry: promReg,
	}, nil
}

func (a *app) close() {
	a.bus.Close()
	_ = a.store.Close()
}

func (a *app) run(command string) error {
	ctx := context.Background()

	switch command {
	case "picker add <name>":
		return a.runPickerAdd(ctx)
	case "picker rename <id> <name>":
		return a.runPickerRename(ctx)
	case "picker hide <id>":
		return a.runPickerActive(ctx, CLI.Picker.Hide.ID, false)
	case "picker show <id>":
		return a.runPickerActive(ctx, CLI.Picker.Show.ID, true)
	case "picker rm <id>":
		return a.roster.DeletePicker(ctx, CLI.Picker.Rm.ID)
	case "picker list":
		return a.runPickerList(ctx)

	case "orchard add <name>":
		return a.runOrchardAdd(ctx)
	case "orchard rename <id> <name>":
		return a.runOrchardRename(ctx)
	case "orchard hide <id>":
		return a.runOrchardActive(ctx, CLI.Orchard.Hide.ID, false)
	case "orchard show <id>":
		return a.runOrchardActive(ctx, CLI.Orchard.Show.ID, true)
	case "orchard rm <id>":
		return a.roster.DeleteOrchard(ctx, CLI.Orchard.Rm.ID)
	case "orchard list":
		return a.runOrchardList(ctx)

	case "day new <date>":
		return a.runDayNew(ctx)
	case "day show", "day show <date>":
		return a.runDayShow(ctx, CLI.Day.Show.Date)
	case "day close <date>":
		return a.runDayClose(ctx)
	case "day reopen <date>":
		return a.runDayReopen(ctx)
	case "day open":
		return a.runDayOpen(ctx)

	case "shift new <date>":
		return a.runShiftNew(ctx)
	case "shift board", "shift board <date>":
		return a.runShiftBoard(ctx)

	case "mark <date> <picker> <delta>":
		return a.runMark(ctx)
	case "count adjust <count-id> <delta>":
		return a.runCountAdjust(ctx)
	case "count reset <count-id>":
		return a.runCountReset(ctx)

	case "report day <date>":
		return a.runReportDay(ctx)
	case "report week <date>":
		return a.runReportWeek(ctx)

	case "week close <date>":
		return a.runWeekClose(ctx)
	case "week reopen <date>":
		return a.runWeekReopen(ctx)
	case "week status <date>":
		return a.runWeekStatus(ctx)

	case "export <file>":
		return a.runExport(ctx)
	case "import <file>":
		return a.runImport(ctx)
	case "reset":
		return a.runReset(ctx)
	case "stats":
		return a.runStats()
	}

	return errors.Validation("unknown command: " + command)
}

// workdayFor resolves a date argument to a workday. An empty date or "-"
// means the currently open workday.
func (a *app) workdayFor(ctx context.Context, date string) (*model.Workday, error) {
	if date == "" || date == "-" {
		wd, err := a.days.OpenWorkday(ctx)
		if err != nil {
			return nil, err
		}
		if wd == nil {
			return nil, errors.NotFound("open workday", "today")
		}
		return wd, nil
	}

	wd, err := a.days.WorkdayByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if wd == nil {
		return nil, errors.NotFound("workday", date)
	}
	return wd, nil
}

// pickerFor resolves a name, nickname or id to a picker record.
func (a *app) pickerFor(ctx context.Context, key string) (*model.Picker, error) {
	pickers, err := a.store.ListPickers(ctx, false)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(key))
	var matches []model.Picker
	for _, p := range pickers {
		if p.ID == key {
			return &p, nil
		}
		if strings.ToLower(p.Name) == needle || (p.Nickname != "" && strings.ToLower(p.Nickname) == needle) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 1:
		return &matches[0], nil
	case 0:
		return nil, errors.NotFound("picker", key)
	default:
		return nil, errors.Validation("picker name is ambiguous, use the id: " + key)
	}
}

func parsePrice(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(raw), ",", ".", 1))
	if err != nil {
		return decimal.Zero, errors.ValidationField("price", "must be a decimal number")
	}
	return d, nil
}
