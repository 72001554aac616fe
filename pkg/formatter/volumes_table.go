package formatter

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/younsl/ebsconvert/internal/models"
)

// maxNameWidth defines the maximum width for the Name column
const maxNameWidth = 20

// PrintCandidatesTable prints the volumes selected for conversion
func PrintCandidatesTable(w io.Writer, result models.DiscoveryResult, scanDuration time.Duration) {
	if len(result.Candidates) == 0 {
		fmt.Fprintf(w, "No opted-in volumes found (%s scanned).\n", humanize.Comma(int64(result.ScannedCount)))
		printTimestamp(w, result.Timestamp, scanDuration)
		return
	}

	candidates := make([]models.VolumeCandidate, len(result.Candidates))
	copy(candidates, result.Candidates)
	// Largest volumes first, they save the most
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Size > candidates[j].Size
	})

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVOLUME ID\tTYPE\tSIZE\tAZ\tINSTANCE")

	var totalGiB int64
	for _, candidate := range candidates {
		name := candidate.Tags["Name"]
		if name == "" {
			name = "N/A"
		}
		instance := candidate.InstanceID
		if instance == "" {
			instance = "-"
		}
		totalGiB += int64(candidate.Size)

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			PadString(TruncateString(name, maxNameWidth), maxNameWidth),
			candidate.VolumeID,
			candidate.VolumeType,
			humanize.IBytes(uint64(candidate.Size)*humanize.GiByte),
			candidate.AvailabilityZone,
			instance,
		)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nTotal: %d of %s volumes opted in, %s\n",
		len(candidates),
		humanize.Comma(int64(result.ScannedCount)),
		humanize.IBytes(uint64(totalGiB)*humanize.GiByte),
	)
	printTimestamp(w, result.Timestamp, scanDuration)
}
