// Package pipeline implements the five stages of a conversion run.
//
// A run discovers opted-in volumes, records a PENDING audit entry for each,
// requests the type change, polls the provider until every requested change
// settles or the deadline passes, and publishes a summary. Runner wires the
// stages together for a single invocation.
package pipeline
