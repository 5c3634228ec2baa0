package models

// Stage represents a named point in a conversation's linear protocol. It
// determines which input is expected and what transition applies.
type Stage int

const (
	// StageNone means no conversation is in progress
	StageNone Stage = iota

	// Registration stages
	StageFirstName
	StageLastName
	StageAge
	StageGender
	StageCity

	// Activation stages
	StageTargetID
	StageDepartment

	// Lookup stages
	StageEducationType
	StageFaculty
	StageProfile
	// StageDone is reached after the description has been shown; any input
	// finishes the conversation
	StageDone
)

var stageNames = map[Stage]string{
	StageNone:          "none",
	StageFirstName:     "first_name",
	StageLastName:      "last_name",
	StageAge:           "age",
	StageGender:        "gender",
	StageCity:          "city",
	StageTargetID:      "target_id",
	StageDepartment:    "department",
	StageEducationType: "education_type",
	StageFaculty:       "faculty",
	StageProfile:       "profile",
	StageDone:          "done",
}

// String returns the stage name for logging.
func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// Next returns the following stage within the same stage group. The last
// input stage of a group advances to StageNone.
func (s Stage) Next() Stage {
	switch s {
	case StageFirstName:
		return StageLastName
	case StageLastName:
		return StageAge
	case StageAge:
		return StageGender
	case StageGender:
		return StageCity
	case StageTargetID:
		return StageDepartment
	case StageEducationType:
		return StageFaculty
	case StageFaculty:
		return StageProfile
	case StageProfile:
		return StageDone
	default:
		return StageNone
	}
}

// Prev returns the preceding stage within the lookup group. Stages outside
// the lookup group have no backward navigation.
func (s Stage) Prev() Stage {
	switch s {
	case StageFaculty:
		return StageEducationType
	case StageProfile:
		return StageFaculty
	case StageDone:
		return StageProfile
	default:
		return StageNone
	}
}
