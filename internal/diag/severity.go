package diag

import "strings"

// Severity orders diagnostics; anything at SevError fails a build.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityLabels = [...]string{"info", "warning", "error"}

// String is the upper-case form used in golden files and tables.
func (s Severity) String() string {
	if int(s) < len(severityLabels) {
		return strings.ToUpper(severityLabels[s])
	}
	return "UNKNOWN"
}

// Label is the lower-case form of one-line output. Unknown values print as info.
func (s Severity) Label() string {
	if int(s) < len(severityLabels) {
		return severityLabels[s]
	}
	return severityLabels[SevInfo]
}
