package entity

// Role is the claimed role of the person asking for an existence check.
// It is a closed set: anything not listed below parses to RoleUnrecognized.
type Role int

const (
	RoleUnrecognized Role = iota
	RolePatient
	RolePatientCompanion
	RoleProvider
)

// Role names as sent by clients
const (
	RoleNamePatient          = "Patient"
	RoleNamePatientCompanion = "PatientCompanion"
	RoleNameProvider         = "Nurse/Doctor"
)

// ParseRole maps a client role string to a Role. Matching is exact and case-sensitive.
func ParseRole(name string) Role {
	switch name {
	case RoleNamePatient:
		return RolePatient
	case RoleNamePatientCompanion:
		return RolePatientCompanion
	case RoleNameProvider:
		return RoleProvider
	default:
		return RoleUnrecognized
	}
}

// String returns the role name, or "unrecognized"
func (r Role) String() string {
	switch r {
	case RolePatient:
		return RoleNamePatient
	case RolePatientCompanion:
		return RoleNamePatientCompanion
	case RoleProvider:
		return RoleNameProvider
	default:
		return "unrecognized"
	}
}
