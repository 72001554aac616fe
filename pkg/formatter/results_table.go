package formatter

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/younsl/ebsconvert/internal/models"
)

// PrintRunReport prints one row per verified volume followed by run totals
func PrintRunReport(w io.Writer, report models.RunReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Volume ID", "Result", "State", "Tagged", "Recorded"})

	for _, outcome := range report.Outcomes {
		result := "FAILED"
		switch {
		case outcome.Success:
			result = "CONVERTED"
		case outcome.TimedOut:
			result = "TIMED OUT"
		}
		state := outcome.State.Describe()
		if state == "" {
			state = "-"
		}
		t.AppendRow(table.Row{outcome.VolumeID, result, state, yesNo(outcome.Tagged), yesNo(outcome.Recorded)})
	}

	t.AppendFooter(table.Row{
		"Total",
		fmt.Sprintf("%d converted", report.Succeeded()),
		fmt.Sprintf("%d failed", report.Failed()),
		fmt.Sprintf("%d timed out", report.TimedOut()),
		"",
	})
	t.Render()

	mode := ""
	if report.DryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(w, "Run %s%s: scanned %s volumes, %d candidates, %d audit records written\n",
		report.RunID, mode, humanize.Comma(int64(report.ScannedCount)), len(report.Candidates), report.LoggedCount)
	if report.PricingSource != "" {
		fmt.Fprintf(w, "Estimated monthly savings: $%s (pricing: %s)\n",
			humanize.CommafWithDigits(report.EstimatedMonthlySavings, 2), report.PricingSource)
	}
	if !report.Notification.Published && report.Notification.Error != "" {
		fmt.Fprintf(w, "Notification failed: %s\n", report.Notification.Error)
	}
}

// PrintAuditHistory prints the stored audit records of one volume, newest last
func PrintAuditHistory(w io.Writer, volumeID string, records []models.AuditRecord) {
	if len(records) == 0 {
		fmt.Fprintf(w, "No audit records found for %s.\n", volumeID)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Logged At", "Run ID", "From", "To", "Status", "Message", "Last Checked"})
	for _, record := range records {
		t.AppendRow(table.Row{
			record.LoggedAt,
			record.RunID,
			record.PrevVolumeType,
			record.TargetVolumeType,
			string(record.ConversionStatus),
			record.StatusMessage,
			record.LastCheckedAt,
		})
	}
	t.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
