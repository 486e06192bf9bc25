package core

// TurnBias returns the deterministic ±1 directional bias for a step index,
// following the dragon-curve folding sequence: +1 when the bit immediately
// above the lowest set bit of step is clear, -1 otherwise. Indices <= 0
// always turn +1.
//
// The sequence for steps 1..7 is +1 +1 -1 +1 +1 -1 -1.
func TurnBias(step int) int {
	if step <= 0 {
		return 1
	}
	if ((step&-step)<<1)&step == 0 {
		return 1
	}
	return -1
}
