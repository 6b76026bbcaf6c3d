package propagation

import satellite "github.com/joshuaferrara/go-satellite"

// SatState is a per-satellite orbital state. go-satellite's Satellite is a
// plain value with no internal pointers into shared state, so a struct copy
// already gives each caller its own private clone.
type SatState struct {
	sat     satellite.Satellite
	NORADID int
}
