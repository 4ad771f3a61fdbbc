// Command pkghealth prints a health report for an npm package.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"gopkg.in/yaml.v3"

	"github.com/git-pkgs/pkghealth"
	"github.com/git-pkgs/pkghealth/internal/log"
	"github.com/git-pkgs/pkghealth/internal/rules"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cli := kingpin.New("pkghealth", "Report on the health of an npm package.")
	cli.UsageWriter(stderr)
	cli.ErrorWriter(stderr)
	configPath := cli.Flag("config", "Path to a YAML configuration file.").Envar("PKGHEALTH_CONFIG").String()
	logLevel := cli.Flag("log-level", "Log level: debug, info, warn or error.").String()
	logFormat := cli.Flag("log-format", "Log format: json or text.").String()

	reportCmd := cli.Command("report", "Create a report for a package.").Default()
	sourceType := reportCmd.Flag("type", "Package source.").Default("npm").Enum(pkghealth.SupportedEcosystems()...)
	output := reportCmd.Flag("output", "Output format.").Short('o').Default("json").Enum("json", "table")
	name := reportCmd.Arg("package", "Package name (URL-encoded names are decoded) or Package URL such as pkg:npm/lodash.").Required().String()

	configCmd := cli.Command("config", "Print the effective configuration.")
	rulesCmd := cli.Command("rules", "List the rules in evaluation order.")

	cmd, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, err := pkghealth.LoadConfig(*configPath)
	if err != nil {
		return fail(stderr, err)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Logging.Format = *logFormat
	}

	switch cmd {
	case configCmd.FullCommand():
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fail(stderr, err)
		}
		_, _ = stdout.Write(out)
		return 0

	case rulesCmd.FullCommand():
		renderRules(stdout, rules.All(), rules.NewEngine(cfg.Rules).Rules())
		return 0

	case reportCmd.FullCommand():
		logger, sync, err := log.New("pkghealth", cfg.Logging.Format, cfg.Logging.Level)
		if err != nil {
			return fail(stderr, err)
		}
		defer func() { _ = sync() }()

		reporter, err := pkghealth.New(cfg, nil, pkghealth.WithLogger(logger))
		if err != nil {
			return fail(stderr, err)
		}

		var report *pkghealth.Report
		if strings.HasPrefix(*name, "pkg:") {
			report, err = reporter.ReportPURL(ctx, *name)
		} else {
			report, err = reporter.Handle(ctx, pkghealth.Request{Type: *sourceType, Name: *name})
		}
		if err != nil {
			logger.V(1).Info("report failed", "error", err.Error())
			return fail(stderr, err)
		}

		if *output == "table" {
			renderTable(stdout, report)
			return 0
		}
		if err := renderJSON(stdout, report); err != nil {
			return fail(stderr, err)
		}
		return 0
	}
	return 0
}

// fail writes err as an ErrorResponse and returns the exit status.
func fail(w io.Writer, err error) int {
	enc := json.NewEncoder(w)
	_ = enc.Encode(pkghealth.ErrorBody(err))
	return 1
}
