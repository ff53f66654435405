package logtrace

// Fields is a type alias for structured log fields
type Fields map[string]interface{}

// WithFields returns a copy of base with extra fields merged in.
func WithFields(base Fields, extra Fields) Fields {
	fields := Fields{}
	for key, value := range base {
		fields[key] = value
	}
	for key, value := range extra {
		fields[key] = value
	}
	return fields
}

const (
	FieldCorrelationID = "correlation_id"
	FieldOrigin        = "origin"
	FieldMethod        = "method"
	FieldModule        = "module"
	FieldError         = "error"
	FieldKind          = "kind"
	FieldStatus        = "status"
	FieldRequest       = "request"
	FieldStackTrace    = "stack_trace"
	FieldBlockNumber   = "block_number"
	FieldBlockHash     = "block_hash"
	FieldRows          = "rows"
	FieldCols          = "cols"
	FieldChunkSize     = "chunk_size"
	FieldCells         = "cells"
	FieldExtrinsics    = "extrinsics"
	FieldSeed          = "seed"
	FieldStrategy      = "strategy"
	FieldDuration      = "duration"
	FieldCacheSize     = "cache_size"
)
