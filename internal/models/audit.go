package models

// ConversionStatus is the lifecycle status stored on an audit record
type ConversionStatus string

const (
	StatusPending   ConversionStatus = "PENDING"
	StatusCompleted ConversionStatus = "COMPLETED"
	StatusFailed    ConversionStatus = "FAILED"
)

// AuditRecord is one durable row per volume per pipeline run.
// VolumeID and LoggedAt together form the record key.
type AuditRecord struct {
	VolumeID         string            `dynamodbav:"VolumeId" json:"VolumeId"`
	LoggedAt         string            `dynamodbav:"LoggedAt" json:"LoggedAt"`
	RunID            string            `dynamodbav:"RunId,omitempty" json:"RunId,omitempty"`
	InstanceID       string            `dynamodbav:"InstanceId,omitempty" json:"InstanceId,omitempty"`
	PrevVolumeType   string            `dynamodbav:"PrevVolumeType" json:"PrevVolumeType"`
	TargetVolumeType string            `dynamodbav:"TargetVolumeType,omitempty" json:"TargetVolumeType,omitempty"`
	Size             int32             `dynamodbav:"Size" json:"Size"`
	AvailabilityZone string            `dynamodbav:"AvailabilityZone" json:"AvailabilityZone"`
	Region           string            `dynamodbav:"Region" json:"Region"`
	Tags             map[string]string `dynamodbav:"Tags,omitempty" json:"Tags,omitempty"`
	ConversionStatus ConversionStatus  `dynamodbav:"ConversionStatus" json:"ConversionStatus"`
	StatusMessage    string            `dynamodbav:"StatusMessage,omitempty" json:"StatusMessage,omitempty"`
	LastCheckedAt    string            `dynamodbav:"LastCheckedAt,omitempty" json:"LastCheckedAt,omitempty"`
}

// StatusUpdate targets an existing audit record by its key and moves it to a
// terminal status. An empty StatusMessage leaves the stored message untouched.
type StatusUpdate struct {
	VolumeID      string
	LoggedAt      string
	Status        ConversionStatus
	StatusMessage string
	CheckedAt     string
}
