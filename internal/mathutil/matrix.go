package mathutil

// Mat is a 2D float64 matrix stored as row-major [][]float64.
type Mat = [][]float64

// NewMat creates a rows x cols matrix initialized to zero.
func NewMat(rows, cols int) Mat {
	return NewGrid[float64](rows, cols)
}

// NewGrid creates a rows x cols grid backed by one contiguous slice.
func NewGrid[T any](rows, cols int) [][]T {
	m := make([][]T, rows)
	data := make([]T, rows*cols)
	for i := range m {
		m[i] = data[i*cols : (i+1)*cols]
	}
	return m
}
