// correlation.go: Trace correlation fields for log integrations
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

// Package correlation injects trace identifiers into log event payloads.
package correlation

// Payload keys read from and written to log events.
const (
	TraceIDKey = "trace_id"
	SpanIDKey  = "span_id"
	FieldsKey  = "dd"
)

// Inject adds a FieldsKey entry to payload carrying the trace and span ids
// of the event and the configured service. It returns false when the payload
// has no trace id, in which case it is left untouched.
func Inject(payload map[string]any, service string) bool {
	if payload == nil {
		return false
	}
	traceID, ok := payload[TraceIDKey]
	if !ok || traceID == nil || traceID == "" {
		return false
	}

	fields := map[string]any{TraceIDKey: traceID}
	if spanID, ok := payload[SpanIDKey]; ok {
		fields[SpanIDKey] = spanID
	}
	if service != "" {
		fields["service"] = service
	}
	payload[FieldsKey] = fields
	return true
}
