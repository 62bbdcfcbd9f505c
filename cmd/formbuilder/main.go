package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	formbuilder "github.com/goliatone/go-formbuilder"
	"github.com/goliatone/go-formbuilder/internal/config"
	"github.com/goliatone/go-formbuilder/internal/logging"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
)

const usage = `formbuilder builds a form in the terminal, fills it out, and exports it.

Modes:
  edit     add, change, and delete questions (default)
  fill     fill out the saved form
  preview  write the form as an HTML page
  schema   write an OpenAPI document describing the submission payload
  import   replace the saved form with a JSON file (-form)
  reset    discard the saved form
`

func main() {
	var (
		configFlag = flag.String("config", "", "YAML configuration file (built-in defaults when empty)")
		modeFlag   = flag.String("mode", "edit", "edit, fill, preview, schema, import, or reset")
		formFlag   = flag.String("form", "", "form JSON to import")
		outputFlag = flag.String("output", "", "output file for preview and schema (stdout when empty)")
		formatFlag = flag.String("format", "yaml", "schema format: yaml or json")
		watchFlag  = flag.Bool("watch", false, "reload the log level when the config file changes")
	)
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage, "\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.Default()
	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Close()

	if *watchFlag && *configFlag != "" {
		err := config.Watch(ctx, *configFlag, func(next config.Config, err error) {
			if err != nil {
				logger.Warn("Failed to reload config", "err", err)
				return
			}
			level, err := config.ParseLevel(next.Log.Level)
			if err != nil {
				logger.Warn("Ignoring log level", "err", err)
				return
			}
			logger.SetLevel(level)
			logger.Info("Config reloaded", "level", level)
		})
		if err != nil {
			logger.Warn("Config watch disabled", "err", err)
		}
	}

	app, err := formbuilder.New(ctx, formbuilder.WithConfig(cfg), formbuilder.WithLogger(logger.Logger))
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	runErr := run(ctx, app, *modeFlag, *formFlag, *outputFlag, *formatFlag)
	if err := app.Close(); err != nil {
		logger.Error("Failed to close storage", "err", err)
	}
	if runErr != nil && !errors.Is(runErr, tui.ErrAborted) {
		log.Fatalf("%s: %v", *modeFlag, runErr)
	}
}

func run(ctx context.Context, app *formbuilder.App, mode, formPath, output, format string) error {
	switch strings.ToLower(mode) {
	case "edit":
		return tui.New(tui.WithLogger(app.Logger)).Edit(ctx, app.Builder)

	case "fill":
		_, err := tui.New(tui.WithLogger(app.Logger)).Run(ctx, app.Fill(ctx))
		return err

	case "preview":
		page, err := app.Preview(ctx, nil)
		if err != nil {
			return err
		}
		return writeOutput(output, page)

	case "schema":
		doc, _, err := app.Render(ctx, "openapi-"+strings.ToLower(format), nil)
		if err != nil {
			return err
		}
		return writeOutput(output, doc)

	case "import":
		if formPath == "" {
			return errors.New("-form is required")
		}
		raw, err := os.ReadFile(formPath)
		if err != nil {
			return err
		}
		var form model.FormState
		if err := json.Unmarshal(raw, &form); err != nil {
			return fmt.Errorf("decode %s: %w", formPath, err)
		}
		for i, errs := range app.Builder.Import(ctx, form) {
			for field, msg := range errs {
				app.Logger.Warn("Imported question is invalid", "question", form.Questions[i].ID, "field", field, "reason", msg)
			}
		}
		return nil

	case "reset":
		if !app.Builder.CanReset(ctx) {
			app.Logger.Info("Nothing saved to reset")
			return nil
		}
		app.Builder.Reset(ctx)
		return nil

	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Printf("wrote %d bytes to %s", len(data), path)
	return nil
}
