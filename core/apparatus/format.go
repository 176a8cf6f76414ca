package apparatus

import (
	"fmt"
	"strings"
)

// FormatEntry renders an entry as a single apparatus line, for example
// "cat] dog B; om. C".
func FormatEntry(e Entry) string {
	var sb strings.Builder
	if e.PreLemma != "" {
		sb.WriteString(e.PreLemma)
		sb.WriteByte(' ')
	}
	sb.WriteString(e.Lemma)
	if e.PostLemma != "" {
		sb.WriteByte(' ')
		sb.WriteString(e.PostLemma)
	}
	sep := e.Separator
	if sep == "" {
		sep = "]"
	}
	sb.WriteString(sep)

	parts := make([]string, 0, len(e.SubEntries))
	for _, se := range e.SubEntries {
		var p string
		switch se.Type {
		case TypeOmission:
			p = "om."
		case TypeAddition:
			p = "add. " + se.Text
		default:
			p = se.Text
		}
		if se.Sigla != "" {
			p = fmt.Sprintf("%s %s", p, se.Sigla)
		}
		parts = append(parts, p)
	}
	if len(parts) > 0 {
		sb.WriteByte(' ')
		sb.WriteString(strings.Join(parts, "; "))
	}
	return sb.String()
}
