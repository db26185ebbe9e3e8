// internal/core/types.go
package core

// Status is the residency of a file as reported by the storage backend.
type Status string

const (
	StatusOnline            Status = "ONLINE"
	StatusNearline          Status = "NEARLINE"
	StatusOnlineAndNearline Status = "ONLINE_AND_NEARLINE"
	StatusUnknown           Status = "UNKNOWN"
	StatusError             Status = "ERROR"
)

// AttrStatus is the extended attribute holding a file's residency.
const AttrStatus = "user.status"

// ParseStatus classifies a raw attribute value. Matching is exact:
// anything outside the known locality values is StatusUnknown.
func ParseStatus(raw string) Status {
	switch Status(raw) {
	case StatusOnline, StatusNearline, StatusOnlineAndNearline:
		return Status(raw)
	default:
		return StatusUnknown
	}
}

// Staged reports whether a copy of the file is on disk.
func (s Status) Staged() bool {
	return s == StatusOnline || s == StatusOnlineAndNearline
}

// String implements fmt.Stringer
func (s Status) String() string {
	return string(s)
}

// Result is the outcome of one status lookup.
type Result struct {
	SURL   string
	Status Status
	Raw    string // attribute value as returned by the backend
	Err    error  // set only when Status is StatusError
}

// Label is the text printed next to the SURL. Unknown values are shown
// as the backend returned them.
func (r Result) Label() string {
	switch r.Status {
	case StatusUnknown:
		if r.Raw != "" {
			return r.Raw
		}
	case StatusError:
		if r.Err != nil {
			return string(StatusError) + " (" + r.Err.Error() + ")"
		}
	}
	return string(r.Status)
}
