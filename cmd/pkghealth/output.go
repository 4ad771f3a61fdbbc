package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/git-pkgs/pkghealth"
	"github.com/git-pkgs/pkghealth/internal/rules"
)

func renderJSON(w io.Writer, report *pkghealth.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func renderTable(w io.Writer, report *pkghealth.Report) {
	rec := report.ExtractedData

	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.AppendHeader(table.Row{"Field", "Value"})
	summary.AppendRows([]table.Row{
		{"name", str(rec.Name)},
		{"version", str(rec.Version)},
		{"license", str(rec.License)},
		{"maintainers", num(rec.NoOfMaintainers)},
		{"stars", num(rec.StarsCount)},
		{"forks", num(rec.ForksCount)},
		{"open issues", num(rec.OpenIssuesCount)},
		{"size", num(rec.Size)},
	})
	if rec.LastReleaseTime != nil {
		summary.AppendRow(table.Row{"last release", rec.LastReleaseTime.Format("2006-01-02")})
	}
	summary.Render()

	if len(report.Report) == 0 {
		fmt.Fprintln(w, color.GreenString("No issues found."))
		return
	}

	issues := table.NewWriter()
	issues.SetOutputMirror(w)
	issues.AppendHeader(table.Row{"Category", "Type", "Message"})
	for _, is := range report.Report {
		issues.AppendRow(table.Row{is.Category, colorType(is.Type), is.Message})
	}
	issues.Render()
}

func colorType(t pkghealth.IssueType) string {
	switch t {
	case pkghealth.Alert:
		return color.RedString(string(t))
	case pkghealth.Warning:
		return color.YellowString(string(t))
	default:
		return color.CyanString(string(t))
	}
}

func str(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func num(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

// renderRules lists every rule with its summary, marking those the
// configuration disables.
func renderRules(w io.Writer, all, enabled []rules.Rule) {
	on := make(map[pkghealth.Category]bool, len(enabled))
	for _, r := range enabled {
		on[r.Category] = true
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Category", "Enabled", "Summary"})
	for i, r := range all {
		state := color.GreenString("yes")
		if !on[r.Category] {
			state = color.RedString("no")
		}
		t.AppendRow(table.Row{i + 1, r.Category, state, r.Summary})
	}
	t.Render()
}
