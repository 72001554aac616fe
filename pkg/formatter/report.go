package formatter

import (
	"fmt"
	"strings"

	"github.com/younsl/ebsconvert/internal/models"
)

// ReportHeader is the first line of the conversion report and its subject
const ReportHeader = "EBS Volume Conversion Report"

// NoConversionsMessage is published when a run verified no volumes
const NoConversionsMessage = "No conversions required during this run."

// ConversionReport renders the plain-text summary published at the end of a run
func ConversionReport(outcomes []models.VerificationOutcome) string {
	if len(outcomes) == 0 {
		return NoConversionsMessage
	}

	lines := make([]string, 0, len(outcomes)+2)
	lines = append(lines, ReportHeader, "")
	for _, outcome := range outcomes {
		line := fmt.Sprintf("Volume: %s | Success: %t | State: %s",
			outcome.VolumeID, outcome.Success, reportState(outcome.State))
		if outcome.TimedOut {
			line += " | TIMED OUT"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// reportState falls back to the query error, then "unknown", when the
// service reported neither a state nor a status message
func reportState(state models.ModificationState) string {
	if s := state.Describe(); s != "" {
		return s
	}
	if state.Error != "" {
		return state.Error
	}
	return "unknown"
}
