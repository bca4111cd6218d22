package tabular

import "strings"

// Record is one parsed row, keyed by the header labels of its file. Cell
// values are kept as raw strings; missing cells are the empty string.
type Record map[string]string

// Get looks a column up by label, ignoring case and incidental whitespace
// in the header. Sheets exported from different tools disagree on header
// casing, so lookups must not.
func (r Record) Get(label string) string {
	if v, ok := r[label]; ok {
		return v
	}
	want := strings.ToLower(strings.TrimSpace(label))
	for k, v := range r {
		if strings.ToLower(strings.TrimSpace(k)) == want {
			return v
		}
	}
	return ""
}

// Normalize trims leading and trailing whitespace from every value. Labels
// and the field set are preserved exactly. Idempotent.
func Normalize(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = strings.TrimSpace(v)
	}
	return out
}

// NormalizeAll maps Normalize over a parsed sequence, preserving order.
func NormalizeAll(recs []Record) []Record {
	out := make([]Record, len(recs))
	for i, rec := range recs {
		out[i] = Normalize(rec)
	}
	return out
}
