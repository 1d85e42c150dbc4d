package orderstatus

import "fmt"

// Policy decides which status changes an owner may apply.
type Policy string

const (
	// PolicyAny accepts any member of the table regardless of the current
	// status. This is the default.
	PolicyAny Policy = "any"
	// PolicyForward accepts only statuses later in the table than the
	// current one. Re-applying the current status is a no-op and allowed.
	PolicyForward Policy = "forward"
)

// ParsePolicy accepts "any" or "forward". An empty string means PolicyAny.
func ParsePolicy(raw string) (Policy, error) {
	switch Policy(raw) {
	case "", PolicyAny:
		return PolicyAny, nil
	case PolicyForward:
		return PolicyForward, nil
	}
	return "", fmt.Errorf("unknown status transition policy %q", raw)
}

// Allows reports whether moving from -> to is permitted. Both values must
// already be members of the table; callers validate with Parse first.
func (p Policy) Allows(from, to Status) bool {
	if !to.Valid() {
		return false
	}
	if p != PolicyForward {
		return true
	}
	// A corrupt stored value is treated as the start of the table.
	fi := from.Index()
	if fi < 0 {
		fi = 0
	}
	return to.Index() >= fi
}
