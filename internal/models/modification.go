package models

import "time"

// ModifyAck is the part of a ModifyVolume acknowledgment this tool cares about
type ModifyAck struct {
	OriginalVolumeType string     `json:"OriginalVolumeType,omitempty"`
	TargetVolumeType   string     `json:"TargetVolumeType,omitempty"`
	ModificationState  string     `json:"ModificationState,omitempty"`
	StartTime          *time.Time `json:"StartTime,omitempty"`
}

// ModifyResult is the outcome of requesting a type change for one volume
type ModifyResult struct {
	VolumeID string     `json:"VolumeId"`
	LoggedAt string     `json:"LoggedAt,omitempty"`
	DryRun   bool       `json:"DryRun,omitempty"`
	Response *ModifyAck `json:"ModifyResponse,omitempty"`
	Error    string     `json:"Error,omitempty"`
}

// MutateResult carries modify results together with the untouched candidates
type MutateResult struct {
	Results    []ModifyResult    `json:"ModifyResults"`
	Candidates []VolumeCandidate `json:"Volumes"`
}

// ModificationState is a snapshot of a volume modification as reported by EC2.
// An empty State means EC2 returned no modification record.
type ModificationState struct {
	VolumeID      string     `json:"VolumeId"`
	State         string     `json:"ModificationState,omitempty"`
	StatusMessage string     `json:"StatusMessage,omitempty"`
	Progress      *int64     `json:"Progress,omitempty"`
	StartTime     *time.Time `json:"StartTime,omitempty"`
	Error         string     `json:"Error,omitempty"`
}

// Describe returns the modification state, falling back to the status message
func (s ModificationState) Describe() string {
	if s.State != "" {
		return s.State
	}
	return s.StatusMessage
}

// VerificationOutcome is the terminal result for one volume in a run
type VerificationOutcome struct {
	VolumeID string            `json:"VolumeId"`
	Success  bool              `json:"Success"`
	State    ModificationState `json:"State"`
	Tagged   bool              `json:"Tagged,omitempty"`
	Recorded bool              `json:"Recorded"`
	TimedOut bool              `json:"TimedOut,omitempty"`
}

// VerifyResult is the output of the verification stage
type VerifyResult struct {
	Outcomes  []VerificationOutcome `json:"VerifyResults"`
	CheckedAt time.Time             `json:"CheckedAt"`
}
