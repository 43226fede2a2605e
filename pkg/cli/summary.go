package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/chazu/lignin-replay/pkg/design"
	"github.com/chazu/lignin-replay/pkg/importer"
	"github.com/chazu/lignin-replay/pkg/journal"
)

// styles used for terminal summaries. lipgloss drops the colours when the
// output is not a terminal.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F38BA8"))
	summaryStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475A")).Padding(0, 1)
)

// outcomeLine renders one entity outcome.
func outcomeLine(o importer.EntityOutcome) string {
	label := fmt.Sprintf("%3d  %-16s %-18s", o.Position, o.Type, o.Name)
	switch {
	case o.Err != nil:
		return label + errorStyle.Render("failed: "+o.Err.Error())
	case o.Skipped:
		return label + mutedStyle.Render("skipped")
	case o.Type == design.TypeSketch:
		s := fmt.Sprintf("%d profiles", o.Profiles)
		if o.Unmatched > 0 {
			return label + warnStyle.Render(fmt.Sprintf("%s, %d unmatched", s, o.Unmatched))
		}
		return label + okStyle.Render(s)
	default:
		return label + okStyle.Render(fmt.Sprintf("%s %s", o.Operation, o.Feature))
	}
}

// writeSummary prints the outcome table and a boxed totals line.
func writeSummary(w io.Writer, rep *report) {
	fmt.Fprintln(w, titleStyle.Render("Replay "+rep.source))
	if rep.result != nil {
		for _, o := range rep.result.Entities {
			fmt.Fprintln(w, outcomeLine(o))
		}
	}

	var lines []string
	status := okStyle.Render("ok")
	if rep.err != nil {
		status = errorStyle.Render("failed")
	}
	lines = append(lines, fmt.Sprintf("status    %s", status))
	lines = append(lines, fmt.Sprintf("bodies    %d", len(rep.doc.Bodies())))
	if rep.result != nil {
		if unmatched := rep.result.Table.Unmatched(); len(unmatched) > 0 {
			lines = append(lines, warnStyle.Render("unmatched "+strings.Join(unmatched, ", ")))
		}
	}
	if rep.stats != nil {
		lines = append(lines, fmt.Sprintf("triangles %d", rep.stats.Triangles))
	}
	lines = append(lines, fmt.Sprintf("elapsed   %s", rep.elapsed.Round(time.Millisecond)))
	if rep.runID != "" {
		lines = append(lines, mutedStyle.Render("run "+rep.runID))
	}
	fmt.Fprintln(w, summaryStyle.Render(strings.Join(lines, "\n")))
}

// writeFindings prints pre-flight findings, one per line.
func writeFindings(w io.Writer, findings []design.Finding) {
	for _, f := range findings {
		style := warnStyle
		if f.Severity == design.SeverityError {
			style = errorStyle
		}
		fmt.Fprintln(w, style.Render(f.String()))
	}
}

// writeRuns prints the run history table.
func writeRuns(w io.Writer, runs []journal.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no runs recorded"))
		return
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%-26s  %-20s  %8s  %6s  %s", "RUN", "STARTED", "ENTITIES", "BODIES", "SOURCE")))
	for _, r := range runs {
		line := fmt.Sprintf("%-26s  %-20s  %8d  %6d  %s",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Entities, r.Bodies, r.Source)
		if r.Failed() {
			line += "  " + errorStyle.Render(r.Error)
		}
		fmt.Fprintln(w, line)
	}
}

// writeEntries prints the entity outcomes of one run.
func writeEntries(w io.Writer, entries []journal.Entry) {
	for _, e := range entries {
		status := okStyle.Render("ok")
		switch {
		case e.Error != "":
			status = errorStyle.Render(e.Error)
		case e.Skipped:
			status = mutedStyle.Render("skipped")
		case e.Unmatched > 0:
			status = warnStyle.Render(fmt.Sprintf("%d unmatched", e.Unmatched))
		}
		fmt.Fprintf(w, "%3d  %-16s %-18s %10s  %s\n",
			e.Position, e.Type, e.Name, e.Duration.Round(time.Microsecond), status)
	}
}
