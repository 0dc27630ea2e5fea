package triage

import "fmt"

// Disposition is the outcome of classifying one queue item.
type Disposition int

const (
	// Ignore means nothing is actionable.
	Ignore Disposition = iota
	// Monitor means the episode title is pending and the series needs a refresh.
	Monitor
	// Delete means the item failed an upgrade check.
	Delete
	// Superseded means a better-scoring download for the same episode exists.
	Superseded
)

func (d Disposition) String() string {
	switch d {
	case Ignore:
		return "ignore"
	case Monitor:
		return "monitor"
	case Delete:
		return "delete"
	case Superseded:
		return "superseded"
	default:
		return fmt.Sprintf("disposition(%d)", int(d))
	}
}

// Label is the capitalized name shown in tables.
func (d Disposition) Label() string {
	switch d {
	case Ignore:
		return "Ignore"
	case Monitor:
		return "Monitor"
	case Delete:
		return "Delete"
	case Superseded:
		return "Superseded"
	default:
		return d.String()
	}
}

// Removes reports whether items with this disposition go into the bulk delete.
func (d Disposition) Removes() bool {
	return d == Delete || d == Superseded
}

// MarshalText renders the disposition name for JSON output.
func (d Disposition) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
