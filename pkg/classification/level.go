// Package classification applies the compiled priority policy and the
// ordered category rules to one message, producing the ground-truth
// classification every downstream stage consumes.
package classification

// Level is a closed priority enumeration. Severity decreases from P0 to P3.
type Level int

const (
	P0 Level = iota
	P1
	P2
	P3
)

// Role identifies who a message is assigned to.
type Role string

const (
	RoleProvider Role = "PRESTATAIRE"
	RoleManager  Role = "SYNDIC"
	RoleGuard    Role = "GARDIEN"
)

// slaMinutes is the single canonical level → SLA target table.
var slaMinutes = map[Level]int{
	P0: 5,
	P1: 30,
	P2: 240,
	P3: 1440,
}

func (l Level) String() string {
	switch l {
	case P0:
		return "P0"
	case P1:
		return "P1"
	case P2:
		return "P2"
	default:
		return "P3"
	}
}

// ParseLevel parses a level name. Unknown input yields (P3, false).
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "P0":
		return P0, true
	case "P1":
		return P1, true
	case "P2":
		return P2, true
	case "P3":
		return P3, true
	default:
		return P3, false
	}
}

// CoerceLevel parses a level name, defaulting to P3 for anything unknown.
func CoerceLevel(s string) Level {
	l, _ := ParseLevel(s)
	return l
}

// IsUrgent reports whether the level is in the urgent tier.
func (l Level) IsUrgent() bool {
	return l == P0 || l == P1
}

// SLAMinutes returns the fixed SLA response target for the level.
func (l Level) SLAMinutes() int {
	if m, ok := slaMinutes[l]; ok {
		return m
	}
	return slaMinutes[P3]
}

// AssignedRole returns the role a message at this level is routed to:
// urgent levels go to the provider, the rest to building management.
func (l Level) AssignedRole() Role {
	if l.IsUrgent() {
		return RoleProvider
	}
	return RoleManager
}

// ValidRole reports whether s names a known assignment role.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleProvider, RoleManager, RoleGuard:
		return true
	default:
		return false
	}
}
