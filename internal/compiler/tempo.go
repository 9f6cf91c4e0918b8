package compiler

const (
	// MinTempo and MaxTempo bound the ratio one atempo stage accepts
	// without quality loss.
	MinTempo = 0.5
	MaxTempo = 2.0
)

// TempoChain decomposes speed into atempo ratios within [MinTempo, MaxTempo]
// whose product is speed. Boundary ratios are applied until the remainder
// lies strictly inside the range, then the remainder is appended, so
// TempoChain(4) is [2 2 1]. Non-positive speeds yield nil.
func TempoChain(speed float64) []float64 {
	if !(speed > 0) {
		return nil
	}
	var chain []float64
	remainder := speed
	for remainder >= MaxTempo {
		chain = append(chain, MaxTempo)
		remainder /= MaxTempo
	}
	for remainder <= MinTempo {
		chain = append(chain, MinTempo)
		remainder /= MinTempo
	}
	return append(chain, remainder)
}
