// Command fhir-ig-publisher builds the publishable output set of a
// FHIR Implementation Guide: serialized resources, HTML fragments and
// pages, and a validation report.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	igp "github.com/gofhir/igpublisher"
	"github.com/gofhir/igpublisher/publisher"
)

const version = "0.1.0"

var CLI struct {
	IG       string           `arg:"" help:"Path to the implementation guide control file (ig.json or ig.yaml)." type:"existingfile"`
	Out      string           `short:"o" help:"Output directory." default:"output"`
	Spec     string           `help:"Location of the FHIR specification, used for links to core definitions." default:"http://hl7.org/fhir"`
	Tx       string           `help:"Terminology server address." env:"FHIR_TX_SERVER"`
	Watch    bool             `short:"w" help:"Stay running and republish whenever guide sources change."`
	Interval time.Duration    `help:"Watch-mode poll interval." default:"5s"`
	Workers  int              `help:"Render worker goroutines." default:"1"`
	Verbose  bool             `short:"v" help:"Enable debug logging."`
	Version  kong.VersionFlag `help:"Print version and exit."`
}

func main() {
	// .env may carry FHIR_TX_SERVER; a missing file is fine.
	_ = godotenv.Load()

	kong.Parse(&CLI,
		kong.Name("fhir-ig-publisher"),
		kong.Description("FHIR Implementation Guide Publisher"),
		kong.Vars{"version": version},
	)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	pub, err := publisher.New(CLI.IG, CLI.Out,
		igp.WithSpecPath(CLI.Spec),
		igp.WithTerminologyServer(CLI.Tx),
		igp.WithWatch(CLI.Watch),
		igp.WithWatchInterval(CLI.Interval),
		igp.WithRenderWorkers(CLI.Workers),
	)
	if err != nil {
		fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := pub.Execute(ctx); err != nil {
		fail(err)
	}

	report := pub.Report()
	slog.Info("publishing finished",
		"errors", report.ErrorCount(),
		"warnings", report.WarningCount(),
		"report", CLI.Out+"/validation.html")
}

// fail surfaces the failure and exits without producing partial output
// silently: a short message for the console, the full chain for
// debugging.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "fhir-ig-publisher: %v\n", err)
	slog.Error("publishing failed", "error", err)
	os.Exit(1)
}
