package models

// ActivityKind names one trackable activity.
type ActivityKind string

const (
	ActivitySteps    ActivityKind = "steps"
	ActivityRunning  ActivityKind = "running"
	ActivityCycling  ActivityKind = "cycling"
	ActivitySwimming ActivityKind = "swimming"
	ActivityWorkout  ActivityKind = "workout"
)

// ActivityDef is one catalog entry: the point multiplier applied to a
// raw daily quantity and the unit shown next to it.
type ActivityDef struct {
	PointValue float64
	Unit       string
}

// ActivityCatalog is static configuration, never mutated at runtime.
var ActivityCatalog = map[ActivityKind]ActivityDef{
	ActivitySteps:    {PointValue: 0.01, Unit: "steps"},
	ActivityRunning:  {PointValue: 10, Unit: "km"},
	ActivityCycling:  {PointValue: 4, Unit: "km"},
	ActivitySwimming: {PointValue: 25, Unit: "km"},
	ActivityWorkout:  {PointValue: 1.5, Unit: "min"},
}

// ActivityKinds lists the catalog in a fixed order for iteration.
var ActivityKinds = []ActivityKind{
	ActivitySteps,
	ActivityRunning,
	ActivityCycling,
	ActivitySwimming,
	ActivityWorkout,
}
