package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/turmeiro/boxtally/internal/config"
	"github.com/turmeiro/boxtally/internal/errors"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path (default boxtally.yaml)"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Picker struct {
		Add struct {
			Name     string `arg:"" help:"Picker name"`
			Nickname string `help:"Optional nickname"`
		} `cmd:"" help:"Register a picker"`
		Rename struct {
			ID       string `arg:"" help:"Picker id"`
			Name     string `arg:"" help:"New name"`
			Nickname string `help:"New nickname (empty clears it)"`
		} `cmd:"" help:"Rename a picker"`
		Hide struct {
			ID string `arg:"" help:"Picker id"`
		} `cmd:"" help:"Hide a picker from new workdays"`
		Show struct {
			ID string `arg:"" help:"Picker id"`
		} `cmd:"" help:"Make a hidden picker selectable again"`
		Rm struct {
			ID string `arg:"" help:"Picker id"`
		} `cmd:"" help:"Delete a picker (historical counts are kept)"`
		List struct {
			All bool `help:"Include hidden pickers"`
		} `cmd:"" help:"List pickers"`
	} `cmd:"" help:"Manage the crew roster"`

	Orchard struct {
		Add struct {
			Name string `arg:"" help:"Orchard name"`
		} `cmd:"" help:"Register an orchard"`
		Rename struct {
			ID   string `arg:"" help:"Orchard id"`
			Name string `arg:"" help:"New name"`
		} `cmd:"" help:"Rename an orchard (past shifts keep the old name)"`
		Hide struct {
			ID string `arg:"" help:"Orchard id"`
		} `cmd:"" help:"Hide an orchard from new shifts"`
		Show struct {
			ID string `arg:"" help:"Orchard id"`
		} `cmd:"" help:"Make a hidden orchard selectable again"`
		Rm struct {
			ID string `arg:"" help:"Orchard id"`
		} `cmd:"" help:"Delete an orchard"`
		List struct {
			All bool `help:"Include hidden orchards"`
		} `cmd:"" help:"List orchards"`
	} `cmd:"" help:"Manage harvest locations"`

	Day struct {
		New struct {
			Date    string   `arg:"" help:"Calendar date, YYYY-MM-DD"`
			Pickers []string `required:"" help:"Crew picker ids for the day"`
			Orchard string   `required:"" help:"Orchard id for the first shift"`
			Price   string   `required:"" help:"Price per box for the first shift"`
		} `cmd:"" help:"Start a workday with its first shift"`
		Show struct {
			Date string `arg:"" optional:"" help:"Date to show (default: open workday)"`
		} `cmd:"" help:"Show a workday summary"`
		Close struct {
			Date string `arg:"" help:"Date of the workday"`
		} `cmd:"" help:"Close a workday, freezing its counts"`
		Reopen struct {
			Date string `arg:"" help:"Date of the workday"`
		} `cmd:"" help:"Reopen a closed workday for corrections"`
		Open struct{} `cmd:"" help:"List workdays still open"`
	} `cmd:"" help:"Manage workdays"`

	Shift struct {
		New struct {
			Date    string `arg:"" help:"Date of the workday"`
			Orchard string `required:"" help:"Orchard id"`
			Price   string `required:"" help:"Price per box"`
		} `cmd:"" help:"Start a new shift on a workday"`
		Board struct {
			Date    string `arg:"" optional:"" help:"Date (default: open workday)"`
			Filter  string `help:"Filter rows by picker name"`
			ByBoxes bool   `help:"Sort leaders first instead of by name"`
		} `cmd:"" help:"Show the marking board of the active shift"`
	} `cmd:"" help:"Manage shifts"`

	Mark struct {
		Date   string `arg:"" help:"Date of the workday (\"-\" for the open one)"`
		Picker string `arg:"" help:"Picker name, nickname or id"`
		Delta  int64  `arg:"" help:"Boxes to add (negative subtracts)"`
	} `cmd:"" help:"Mark boxes for a picker on the active shift"`

	Count struct {
		Adjust struct {
			CountID string `arg:"" help:"Count id"`
			Delta   int64  `arg:"" help:"Boxes to add (negative subtracts)"`
		} `cmd:"" help:"Adjust a count by id"`
		Reset struct {
			CountID string `arg:"" help:"Count id"`
		} `cmd:"" help:"Reset a count to zero"`
	} `cmd:"" help:"Low-level count corrections"`

	Report struct {
		Day struct {
			Date string `arg:"" help:"Date of the workday"`
			CSV  bool   `help:"Emit semicolon-separated CSV"`
		} `cmd:"" help:"Day report with per-picker and per-orchard totals"`
		Week struct {
			Date string `arg:"" help:"Any date inside the week"`
			CSV  bool   `help:"Emit semicolon-separated CSV"`
		} `cmd:"" help:"Week report over closed workdays"`
	} `cmd:"" help:"Aggregated reports"`

	Week struct {
		Close struct {
			Date string `arg:"" help:"Any date inside the week"`
			Note string `help:"Closure note"`
		} `cmd:"" help:"Close the week and freeze its totals"`
		Reopen struct {
			Date string `arg:"" help:"Any date inside the week"`
		} `cmd:"" help:"Reopen a closed week"`
		Status struct {
			Date string `arg:"" help:"Any date inside the week"`
		} `cmd:"" help:"Show the week's closure state"`
	} `cmd:"" help:"Weekly closures"`

	Export struct {
		File string `arg:"" help:"Destination JSON file (\"-\" for stdout)"`
	} `cmd:"" help:"Export all records as a JSON document"`

	Import struct {
		File  string `arg:"" help:"Source JSON file"`
		Merge bool   `help:"Merge into existing records instead of replacing"`
	} `cmd:"" help:"Import records from a JSON export"`

	Reset struct {
		Force bool `help:"Required confirmation flag"`
	} `cmd:"" help:"Delete all records"`

	Stats struct{} `cmd:"" help:"Dump operation counters"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("boxtally"),
		kong.Description("Harvest crew box-tally record keeper"),
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		// Logging is not configured yet; report plainly.
		adapter := errors.NewCLIErrorAdapter(CLI.Verbose, nil)
		adapter.HandleError(err)
	}

	setupLogging(cfg)
	adapter := errors.NewCLIErrorAdapter(CLI.Verbose, slog.Default())

	app, err := newApp(cfg)
	if err != nil {
		adapter.HandleError(err)
	}
	defer app.close()

	adapter.HandleError(app.run(ctx.Command()))
}

func setupLogging(cfg config.Config) {
	level := slog.LevelInfo
	switch {
	case CLI.Verbose:
		level = slog.LevelDebug
	default:
		switch cfg.LogLevel {
		case config.LogLevelDebug:
			level = slog.LevelDebug
		case config.LogLevelWarn:
			level = slog.LevelWarn
		case config.LogLevelError:
			level = slog.LevelError
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
