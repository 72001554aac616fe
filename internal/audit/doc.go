// Package audit holds the local audit record store.
//
// Records are keyed by (VolumeID, LoggedAt) exactly like the DynamoDB table
// used in production (see pkg/aws.DynamoAuditStore), so a run against a local
// SQLite file produces the same history a run against DynamoDB would.
package audit
