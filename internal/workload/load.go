package workload

import (
	"fmt"
	"math"
	"strings"
)

// Steady keeps the scene complexity constant.
func Steady() Load {
	return func(uint64) float64 { return 1 }
}

// Spike multiplies the cost by factor for frames [at, at+length).
func Spike(at, length uint64, factor float64) Load {
	return func(n uint64) float64 {
		if n >= at && n < at+length {
			return factor
		}
		return 1
	}
}

// Ramp grows the cost linearly from 1 to factor over frames frames and
// holds it there.
func Ramp(frames uint64, factor float64) Load {
	return func(n uint64) float64 {
		if frames == 0 || n >= frames {
			return factor
		}
		return 1 + (factor-1)*float64(n)/float64(frames)
	}
}

// Wave oscillates the cost between 1 and factor with the given period in
// frames.
func Wave(period uint64, factor float64) Load {
	return func(n uint64) float64 {
		if period == 0 {
			return 1
		}
		phase := 2 * math.Pi * float64(n%period) / float64(period)
		return 1 + (factor-1)*(1-math.Cos(phase))/2
	}
}

// Scenarios lists the names accepted by ParseLoad.
var Scenarios = []string{"steady", "spike", "ramp", "wave"}

// ParseLoad returns the named scenario sized for a run of frames frames.
func ParseLoad(name string, frames uint64, factor float64) (Load, error) {
	switch strings.ToLower(name) {
	case "steady", "":
		return Steady(), nil
	case "spike":
		return Spike(frames/3, max(frames/6, 1), factor), nil
	case "ramp":
		return Ramp(frames/2, factor), nil
	case "wave":
		return Wave(max(frames/4, 2), factor), nil
	default:
		return nil, fmt.Errorf("workload: unknown scenario %q (want one of %s)", name, strings.Join(Scenarios, ", "))
	}
}
