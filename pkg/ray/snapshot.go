package ray

// Snapshot is the per-surface ray-state record cached by the pipeline and
// consumed read-only by downstream analyses (spot diagrams, wavefront maps,
// distortion). It deliberately carries plain arrays rather than a *Batch so
// consumers cannot mutate a live trace.
type Snapshot struct {
	X         []float64 `json:"x"`
	Y         []float64 `json:"y"`
	Z         []float64 `json:"z"`
	L         []float64 `json:"l"`
	M         []float64 `json:"m"`
	N         []float64 `json:"n"`
	Intensity []float64 `json:"intensity"`
	OPD       []float64 `json:"opd"`
}

// TakeSnapshot copies the observable state of a batch.
func TakeSnapshot(b *Batch) Snapshot {
	return Snapshot{
		X: append([]float64(nil), b.X...),
		Y: append([]float64(nil), b.Y...),
		Z: append([]float64(nil), b.Z...),
		L: append([]float64(nil), b.L...),
		M: append([]float64(nil), b.M...),
		N: append([]float64(nil), b.N...),

		Intensity: append([]float64(nil), b.Intensity...),
		OPD:       append([]float64(nil), b.OPD...),
	}
}
