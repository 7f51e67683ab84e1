package sim

// VTime is simulated time in the unit of ticks. The tick is unit-less at
// this layer. The model's own clocking logic gives it meaning.
type VTime uint64

// TimeTeller can be used to get the current simulated time.
type TimeTeller interface {
	CurrentTime() VTime
}
