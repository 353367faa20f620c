package record

// Record is a single stored entry in a collection.
//
// Key is the natural key (caller-supplied short text, exact-match only).
// Seq is the logical clock value stamped when the record was first written;
// it establishes insertion order and is never reused after removal.
// Fields is the structured payload, opaque to the table beyond the equality
// and predicate checks callers request.
type Record struct {
	Key    string `json:"key"`
	Seq    int64  `json:"seq"`
	Fields Fields `json:"fields"`
}

// Clone returns an independent copy safe to hand across the store boundary.
func (r Record) Clone() Record {
	return Record{
		Key:    r.Key,
		Seq:    r.Seq,
		Fields: r.Fields.Clone(),
	}
}

// Equal reports whether two records are identical, fields included.
func (r Record) Equal(other Record) bool {
	return r.Key == other.Key && r.Seq == other.Seq && r.Fields.Equal(other.Fields)
}
