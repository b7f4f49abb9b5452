package dnv

// TraceEntry is one intermediate value of a calculation.
type TraceEntry struct {
	Key   string
	Value float64
	Unit  string
	Text  string
}

// Trace keeps intermediate values in calculation order. It is diagnostic output only.
type Trace []TraceEntry

func (t *Trace) Add(key string, value float64, unit string) {
	*t = append(*t, TraceEntry{Key: key, Value: value, Unit: unit})
}

func (t *Trace) Note(key, text string) {
	*t = append(*t, TraceEntry{Key: key, Text: text})
}

func (t Trace) Lookup(key string) (TraceEntry, bool) {
	for _, e := range t {
		if e.Key == key {
			return e, true
		}
	}
	return TraceEntry{}, false
}
