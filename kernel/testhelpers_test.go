package kernel

import "math"

func float64FromBits(bits uint64) float64 { return math.Float64frombits(bits) }
func negInf() float64                     { return math.Inf(-1) }
func posInf() float64                     { return math.Inf(1) }
func negZero() float64                    { return math.Copysign(0, -1) }
