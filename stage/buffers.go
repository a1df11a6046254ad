package stage

// Baseline is a pair of station indices.
type Baseline struct {
	Antenna1 int32
	Antenna2 int32
}

// BufferSet holds one staged batch in the layout the gridder expects:
//
//	UVW          [baseline][timestep][3]                       float32
//	Visibilities [baseline][timestep][channel][correlation]    complex64
//	Baselines    [baseline]                                    (antenna1, antenna2)
//
// All three are indexed by the same baseline index. A BufferSet is
// allocated once per run and reused for every batch.
type BufferSet struct {
	NrBaselines    int
	NrTimesteps    int
	NrChannels     int
	NrCorrelations int

	UVW          []float32
	Visibilities []complex64
	Baselines    []Baseline
}

// NewBufferSet allocates zeroed buffers.
func NewBufferSet(baselines, timesteps, channels, correlations int) *BufferSet {
	return &BufferSet{
		NrBaselines:    baselines,
		NrTimesteps:    timesteps,
		NrChannels:     channels,
		NrCorrelations: correlations,

		UVW:          make([]float32, baselines*timesteps*3),
		Visibilities: make([]complex64, baselines*timesteps*channels*correlations),
		Baselines:    make([]Baseline, baselines),
	}
}

// Reset zeroes every buffer.
func (b *BufferSet) Reset() {
	clear(b.UVW)
	clear(b.Visibilities)
	clear(b.Baselines)
}

// UVWAt returns the coordinate of baseline bl at timestep t.
func (b *BufferSet) UVWAt(bl, t int) []float32 {
	i := (bl*b.NrTimesteps + t) * 3
	return b.UVW[i : i+3 : i+3]
}

// Visibility returns the channels × correlations samples of baseline bl at
// timestep t.
func (b *BufferSet) Visibility(bl, t int) []complex64 {
	n := b.NrChannels * b.NrCorrelations
	i := (bl*b.NrTimesteps + t) * n
	return b.Visibilities[i : i+n : i+n]
}

// Index returns the baseline index of (a1, a2), or -1.
func (b *BufferSet) Index(a1, a2 int32) int {
	want := Baseline{a1, a2}
	for i, bl := range b.Baselines {
		if bl == want {
			return i
		}
	}
	return -1
}
