package formatter

import (
	"fmt"
	"io"
	"time"

	"github.com/younsl/ebsconvert/pkg/utils"
)

// printTimestamp prints the scan timestamp and duration
func printTimestamp(w io.Writer, scanStartTime time.Time, scanDuration time.Duration) {
	timeStr := scanStartTime.Format("2006-01-02 15:04:05")
	fmt.Fprintf(w, "Scan completed at %s (took %s)\n", timeStr, utils.FormatDuration(scanDuration))
}
