package ctdata

import "strings"

// ApparatusCritical is the apparatus type the generator produces.
const ApparatusCritical = "criticalApparatus"

// Custom sub-entry types.
const (
	SubEntryFullCustom = "fullCustom"
	SubEntryAuto       = "auto"
	SubEntryDisable    = "disable"
)

// FmtTextToken is one piece of formatted apparatus text.
type FmtTextToken struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	FontStyle  string `json:"fontStyle,omitempty"`
	FontWeight string `json:"fontWeight,omitempty"`
}

// Formatted text token types.
const (
	FmtText = "text"
	FmtGlue = "glue"
)

// PlainFmtText wraps a plain string as formatted text.
func PlainFmtText(s string) []FmtTextToken {
	if s == "" {
		return []FmtTextToken{}
	}
	return []FmtTextToken{{Type: FmtText, Text: s}}
}

// FmtTextString flattens formatted text to plain text.
func FmtTextString(ft []FmtTextToken) string {
	var sb strings.Builder
	for _, t := range ft {
		if t.Type == FmtGlue {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// CustomApparatus is an editor's override layer for one apparatus type.
type CustomApparatus struct {
	Type    string                 `json:"type"`
	Entries []CustomApparatusEntry `json:"entries"`
}

// CustomApparatusEntry overrides the apparatus at collation columns From..To.
// The columns are translated to main-text indices when the apparatus is built,
// and they shift with the table when columns are inserted.
type CustomApparatusEntry struct {
	From       int              `json:"from"`
	To         int              `json:"to"`
	PreLemma   string           `json:"preLemma,omitempty"`
	Lemma      string           `json:"lemma,omitempty"`
	PostLemma  string           `json:"postLemma,omitempty"`
	Separator  string           `json:"separator,omitempty"`
	SubEntries []CustomSubEntry `json:"subEntries,omitempty"`
}

// CustomSubEntry adds a hand-written sub-entry or toggles a generated one
// identified by its hash.
type CustomSubEntry struct {
	Type           string         `json:"type"`
	Enabled        bool           `json:"enabled"`
	Hash           int32          `json:"hash,omitempty"`
	FmtText        []FmtTextToken `json:"fmtText,omitempty"`
	WitnessIndices []int          `json:"witnessIndices,omitempty"`
}

func (ca CustomApparatus) clone() CustomApparatus {
	cp := ca
	cp.Entries = make([]CustomApparatusEntry, len(ca.Entries))
	for i, e := range ca.Entries {
		ce := e
		ce.SubEntries = make([]CustomSubEntry, len(e.SubEntries))
		for j, se := range e.SubEntries {
			cse := se
			cse.FmtText = append([]FmtTextToken(nil), se.FmtText...)
			cse.WitnessIndices = append([]int(nil), se.WitnessIndices...)
			ce.SubEntries[j] = cse
		}
		if e.SubEntries == nil {
			ce.SubEntries = nil
		}
		cp.Entries[i] = ce
	}
	return cp
}

// CustomApparatus returns the override layer for the given type, or nil.
func (ct *CtData) CustomApparatus(apparatusType string) *CustomApparatus {
	for i := range ct.CustomApparatuses {
		if ct.CustomApparatuses[i].Type == apparatusType {
			return &ct.CustomApparatuses[i]
		}
	}
	return nil
}
