package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"Erosion/internal/calc/curves"
	"Erosion/internal/calc/engine"
	"Erosion/internal/calc/report"
	"Erosion/internal/calc/schema"
	"Erosion/internal/calc/sheet"
	"Erosion/internal/config"
	"Erosion/internal/logger"

	log "github.com/sirupsen/logrus"
)

type options struct {
	In       string
	Out      string
	Config   string
	Tables   string
	Template bool
	Types    bool
}

// errFailed marks a run whose response reports success=false.
var errFailed = errors.New("calculation failed")

func main() {
	var opts options
	flag.StringVar(&opts.In, "in", "", "request file (.json or .xlsx)")
	flag.StringVar(&opts.Out, "out", "", "output file (.json, .xlsx or .pdf); stdout JSON when empty")
	flag.StringVar(&opts.Config, "config", config.DefaultPath, "settings file")
	flag.StringVar(&opts.Tables, "tables", "", "curve tables file, overrides the settings")
	flag.BoolVar(&opts.Template, "template", false, "convert the request into an .xlsx request workbook instead of calculating")
	flag.BoolVar(&opts.Types, "types", false, "list the supported component types")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	if err := logger.Setup(level, "text", os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errFailed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return err
	}
	if opts.Tables != "" {
		cfg.TablesPath = opts.Tables
	}
	tables, err := curves.Load(cfg.TablesPath)
	if err != nil {
		return err
	}
	eng, err := engine.New(cfg.Engine, tables)
	if err != nil {
		return err
	}

	if opts.Types {
		for _, t := range eng.Types() {
			fmt.Fprintln(stdout, t)
		}
		return nil
	}
	if opts.In == "" {
		return errors.New("-in is required")
	}
	req, err := readRequest(opts.In)
	if err != nil {
		return err
	}

	if opts.Template {
		if opts.Out == "" {
			return errors.New("-template needs -out")
		}
		f, err := sheet.Template(req)
		if err != nil {
			return err
		}
		defer f.Close()
		return f.SaveAs(opts.Out)
	}

	resp := eng.Run(ctx, req, func(cr schema.ComponentResult) {
		log.WithFields(log.Fields{"component_id": cr.ComponentID, "status": cr.Status}).Debug("component finished")
	})
	if err := write(opts.Out, req, resp, stdout); err != nil {
		return err
	}
	if !resp.CalculationResponse.Status.Success {
		return fmt.Errorf("%w: %s", errFailed, strings.Join(resp.CalculationResponse.Status.Errors, "; "))
	}
	return nil
}

func readRequest(path string) (schema.Request, error) {
	var req schema.Request
	f, err := os.Open(path)
	if err != nil {
		return req, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return sheet.Import(f)
	case ".json", "":
		if err := json.NewDecoder(f).Decode(&req); err != nil {
			return req, fmt.Errorf("%s: %w", path, err)
		}
		return req, nil
	}
	return req, fmt.Errorf("%s: unsupported request format", path)
}

func write(path string, req schema.Request, resp schema.Response, stdout io.Writer) error {
	if path == "" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		f, err := sheet.Export(resp)
		if err != nil {
			return err
		}
		defer f.Close()
		return f.SaveAs(path)
	case ".pdf":
		out, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := report.Render(out, req.CalculationRequest, resp); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	case ".json":
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	}
	return fmt.Errorf("%s: unsupported output format", path)
}
