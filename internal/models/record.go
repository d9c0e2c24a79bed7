package models

import "encoding/json"

// StampedRecord is the envelope actually persisted for each logical key:
// the serialized collection plus its write timestamp and writer identity.
//
// Across backends, the record with the numerically largest Timestamp is
// authoritative. Equal timestamps are broken by lexical comparison of the
// writer id so that every replica picks the same winner.
type StampedRecord struct {
	// Value is the JSON-serialized collection payload.
	Value json.RawMessage `json:"value"`

	// Timestamp is the write time in epoch milliseconds. It strictly
	// increases with each write from the same device.
	Timestamp int64 `json:"timestamp"`

	// Writer is the device identifier of the producer. Provenance
	// metadata only, never used for access control.
	Writer string `json:"writer"`
}

// Newer reports whether r should win a last-writer-wins comparison
// against other. A nil other always loses.
func (r *StampedRecord) Newer(other *StampedRecord) bool {
	if r == nil {
		return false
	}
	if other == nil {
		return true
	}
	if r.Timestamp != other.Timestamp {
		return r.Timestamp > other.Timestamp
	}
	// Deterministic tie-break so all replicas converge on one copy.
	return r.Writer > other.Writer
}

// Equal reports whether two records carry byte-identical payloads with the
// same stamp. Used by tests and the poller's change detection.
func (r *StampedRecord) Equal(other *StampedRecord) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Timestamp == other.Timestamp &&
		r.Writer == other.Writer &&
		string(r.Value) == string(other.Value)
}
