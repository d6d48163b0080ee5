package entity

// Placeholder label values used when a class id has no entry in the table
const (
	UnknownLabelName        = "Clase desconocida"
	UnknownLabelDescription = "Descripción no disponible"
)

// LabelEntry holds the display metadata for one detector class
type LabelEntry struct {
	Name        string `json:"nombre" yaml:"nombre"`
	Description string `json:"descripcion" yaml:"descripcion"`
}

// UnknownLabel returns the placeholder entry for classes missing from the table
func UnknownLabel() LabelEntry {
	return LabelEntry{
		Name:        UnknownLabelName,
		Description: UnknownLabelDescription,
	}
}

// LabelTable maps class ids to their display metadata.
// A table is built once at startup and must not be modified afterwards.
type LabelTable struct {
	entries map[int]LabelEntry
}

// NewLabelTable creates a LabelTable from the given entries. The map is copied.
func NewLabelTable(entries map[int]LabelEntry) *LabelTable {
	copied := make(map[int]LabelEntry, len(entries))
	for id, entry := range entries {
		copied[id] = entry
	}
	return &LabelTable{entries: copied}
}

// Lookup returns the entry for classID and whether it exists
func (t *LabelTable) Lookup(classID int) (LabelEntry, bool) {
	if t == nil {
		return LabelEntry{}, false
	}
	entry, ok := t.entries[classID]
	return entry, ok
}

// Resolve returns the entry for classID, or the placeholder entry if absent
func (t *LabelTable) Resolve(classID int) LabelEntry {
	if entry, ok := t.Lookup(classID); ok {
		return entry
	}
	return UnknownLabel()
}

// Len returns the number of entries in the table
func (t *LabelTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of the table contents
func (t *LabelTable) Entries() map[int]LabelEntry {
	out := make(map[int]LabelEntry, t.Len())
	if t == nil {
		return out
	}
	for id, entry := range t.entries {
		out[id] = entry
	}
	return out
}
