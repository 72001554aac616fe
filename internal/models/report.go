package models

import "time"

// NotificationResult reports whether the run summary was published
type NotificationResult struct {
	Published bool   `json:"Published"`
	MessageID string `json:"MessageId,omitempty"`
	Error     string `json:"Error,omitempty"`
}

// RunReport summarizes one pipeline invocation
type RunReport struct {
	RunID                   string                `json:"RunId"`
	Region                  string                `json:"Region"`
	DryRun                  bool                  `json:"DryRun"`
	SourceVolumeTypes       []string              `json:"SourceVolumeTypes"`
	TargetVolumeType        string                `json:"TargetVolumeType"`
	StartedAt               time.Time             `json:"StartedAt"`
	FinishedAt              time.Time             `json:"FinishedAt"`
	ScannedCount            int                   `json:"ScannedCount"`
	Candidates              []VolumeCandidate     `json:"Volumes"`
	LoggedCount             int                   `json:"LoggedCount"`
	ModifyResults           []ModifyResult        `json:"ModifyResults"`
	Outcomes                []VerificationOutcome `json:"VerifyResults"`
	Notification            NotificationResult    `json:"Notification"`
	EstimatedMonthlySavings float64               `json:"EstimatedMonthlySavings,omitempty"`
	PricingSource           string                `json:"PricingSource,omitempty"`
}

// Succeeded returns the number of volumes that finished converting
func (r RunReport) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Success {
			n++
		}
	}
	return n
}

// TimedOut returns the number of volumes that hit the verification deadline
func (r RunReport) TimedOut() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.TimedOut {
			n++
		}
	}
	return n
}

// Failed returns the number of volumes that did not convert, timeouts included
func (r RunReport) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}
