package models

import "time"

// VolumeCandidate represents an EBS volume that opted in to automatic conversion
type VolumeCandidate struct {
	VolumeID         string            `json:"VolumeId"`
	Size             int32             `json:"Size"`
	VolumeType       string            `json:"VolumeType"`
	AvailabilityZone string            `json:"AvailabilityZone"`
	InstanceID       string            `json:"InstanceId,omitempty"`
	Tags             map[string]string `json:"Tags,omitempty"`

	// Set by the recorder
	LoggedAt string `json:"LoggedAt,omitempty"`
	LogError string `json:"LogError,omitempty"`
}

// DiscoveryResult is the output of a volume scan
type DiscoveryResult struct {
	Candidates   []VolumeCandidate `json:"Volumes"`
	ScannedCount int               `json:"ScannedCount"`
	Timestamp    time.Time         `json:"Timestamp"`
}
