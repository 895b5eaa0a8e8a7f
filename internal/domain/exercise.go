package domain

// ExerciseType discriminates which type-specific fields of an Exercise are populated.
type ExerciseType string

const (
	ExerciseReps      ExerciseType = "reps"
	ExerciseHold      ExerciseType = "hold"
	ExerciseDuration  ExerciseType = "duration"
	ExerciseIntervals ExerciseType = "intervals"
)

// Valid reports whether t is one of the known exercise types.
func (t ExerciseType) Valid() bool {
	switch t {
	case ExerciseReps, ExerciseHold, ExerciseDuration, ExerciseIntervals:
		return true
	}
	return false
}

// Exercise is the canonical, alias-free exercise shape. Fields that do not belong to
// ExerciseType are nil.
type Exercise struct {
	ExerciseName    string       `bson:"exercise_name" json:"exercise_name"`
	ExerciseType    ExerciseType `bson:"exercise_type" json:"exercise_type"`
	MusclesUtilized []string     `bson:"muscles_utilized" json:"muscles_utilized"`
	GoalsAddressed  []string     `bson:"goals_addressed" json:"goals_addressed"`
	Reasoning       *string      `bson:"reasoning" json:"reasoning"`
	Equipment       []string     `bson:"equipment" json:"equipment"`

	// reps
	Sets        *int      `bson:"sets" json:"sets"`
	Reps        []int     `bson:"reps" json:"reps"`
	LoadEach    []float64 `bson:"load_each" json:"load_each"`
	LoadUnit    *string   `bson:"load_unit" json:"load_unit"`
	RestSeconds *int      `bson:"rest_seconds" json:"rest_seconds"` // reps and intervals

	// hold
	HoldDurationSec []int `bson:"hold_duration_sec" json:"hold_duration_sec"`

	// duration
	DurationMin *int `bson:"duration_min" json:"duration_min"`

	// intervals
	Rounds  *int `bson:"rounds" json:"rounds"`
	WorkSec *int `bson:"work_sec" json:"work_sec"`
}

// Clone returns a deep copy so mutations never leak into an older instance version.
func (e Exercise) Clone() Exercise {
	out := e
	out.MusclesUtilized = cloneSlice(e.MusclesUtilized)
	out.GoalsAddressed = cloneSlice(e.GoalsAddressed)
	out.Equipment = cloneSlice(e.Equipment)
	out.Reps = cloneSlice(e.Reps)
	out.LoadEach = cloneSlice(e.LoadEach)
	out.HoldDurationSec = cloneSlice(e.HoldDurationSec)
	out.Reasoning = clonePtr(e.Reasoning)
	out.Sets = clonePtr(e.Sets)
	out.LoadUnit = clonePtr(e.LoadUnit)
	out.RestSeconds = clonePtr(e.RestSeconds)
	out.DurationMin = clonePtr(e.DurationMin)
	out.Rounds = clonePtr(e.Rounds)
	out.WorkSec = clonePtr(e.WorkSec)
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
