package mic

// Activity is whether anything is recording from the default input.
// Unknown only holds until the first recompute.
type Activity int

const (
	Unknown Activity = iota
	Inactive
	Active
)

func (a Activity) String() string {
	switch a {
	case Inactive:
		return "inactive"
	case Active:
		return "active"
	}
	return "unknown"
}

func activityOf(active bool) Activity {
	if active {
		return Active
	}
	return Inactive
}
