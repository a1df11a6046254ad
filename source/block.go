package source

// UVW is a baseline coordinate in metres.
type UVW [3]float64

// Row is one visibility record: one baseline at one time.
type Row struct {
	Time     float64
	Antenna1 int32
	Antenna2 int32
	UVW      UVW
	Data     []complex128 // channels × correlations, correlation fastest
	Flag     []bool       // same shape as Data
}

// IsAuto reports whether the row is an autocorrelation.
func (r *Row) IsAuto() bool {
	return r.Antenna1 == r.Antenna2
}

// Block holds a contiguous range of rows, column by column. It is allocated
// once and reused for every batch.
type Block struct {
	Rows         int
	Channels     int
	Correlations int

	Time     []float64
	Antenna1 []int32
	Antenna2 []int32
	UVW      []UVW
	Data     []complex128 // Rows × Channels × Correlations
	Flag     []bool       // Rows × Channels × Correlations
}

// NewBlock allocates a block able to hold rows rows.
func NewBlock(rows, channels, correlations int) *Block {
	samples := rows * channels * correlations

	return &Block{
		Rows:         rows,
		Channels:     channels,
		Correlations: correlations,
		Time:         make([]float64, rows),
		Antenna1:     make([]int32, rows),
		Antenna2:     make([]int32, rows),
		UVW:          make([]UVW, rows),
		Data:         make([]complex128, samples),
		Flag:         make([]bool, samples),
	}
}

// SampleSize returns the number of samples per row.
func (b *Block) SampleSize() int {
	return b.Channels * b.Correlations
}

// Resize sets the row count, reallocating only when rows exceeds capacity.
func (b *Block) Resize(rows int) {
	n := rows * b.SampleSize()

	if rows > cap(b.Time) {
		b.Time = make([]float64, rows)
		b.Antenna1 = make([]int32, rows)
		b.Antenna2 = make([]int32, rows)
		b.UVW = make([]UVW, rows)
	}

	if n > cap(b.Data) {
		b.Data = make([]complex128, n)
		b.Flag = make([]bool, n)
	}

	b.Rows = rows
	b.Time = b.Time[:rows]
	b.Antenna1 = b.Antenna1[:rows]
	b.Antenna2 = b.Antenna2[:rows]
	b.UVW = b.UVW[:rows]
	b.Data = b.Data[:n]
	b.Flag = b.Flag[:n]
}

// Samples returns the visibility samples of row i.
func (b *Block) Samples(i int) []complex128 {
	n := b.SampleSize()
	return b.Data[i*n : (i+1)*n]
}

// Flags returns the flags of row i.
func (b *Block) Flags(i int) []bool {
	n := b.SampleSize()
	return b.Flag[i*n : (i+1)*n]
}

// Row copies row i out of the block.
func (b *Block) Row(i int) Row {
	return Row{
		Time:     b.Time[i],
		Antenna1: b.Antenna1[i],
		Antenna2: b.Antenna2[i],
		UVW:      b.UVW[i],
		Data:     append([]complex128(nil), b.Samples(i)...),
		Flag:     append([]bool(nil), b.Flags(i)...),
	}
}

// Antenna is one entry of a dataset's antenna table.
type Antenna struct {
	Name     string
	Position [3]float64 // metres
}
