package core

// Record is one input row: an ordered mapping of column name to value.
// The zero value is an empty record. Records are not modified after creation.
type Record struct {
	keys   []string
	values map[string]string
}

// NewRecord pairs keys with values. Missing trailing values become "".
// Duplicate keys keep the first value.
func NewRecord(keys []string, values []string) Record {
	r := Record{
		keys:   make([]string, 0, len(keys)),
		values: make(map[string]string, len(keys)),
	}
	for i, k := range keys {
		if _, dup := r.values[k]; dup {
			continue
		}
		v := ""
		if i < len(values) {
			v = values[i]
		}
		r.keys = append(r.keys, k)
		r.values[k] = v
	}
	return r
}

// Get returns the value for key, or "" when the column is absent.
func (r Record) Get(key string) string {
	return r.values[key]
}

// Lookup reports whether key is a column of r.
func (r Record) Lookup(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the column names in their original order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len is the number of columns.
func (r Record) Len() int {
	return len(r.keys)
}
