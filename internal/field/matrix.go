// Package field implements Matrix, a dense row-major grid of colours, together with
// its structural transforms, statistics and the raw pixel boundary.
//
// Every transform returns a fresh matrix. Set is the only mutating operation.
package field

import (
	"errors"
	"fmt"
	"iter"

	"github.com/jmylchreest/tessera/internal/colour"
)

var (
	// ErrIndex is matched by every out-of-bounds access error.
	ErrIndex = errors.New("index out of bounds")

	// ErrInvalidDimensions reports a width, height, crop or buffer size that
	// cannot describe a field.
	ErrInvalidDimensions = errors.New("invalid dimensions")
)

// IndexError describes an access outside [0,rows) x [0,cols).
type IndexError struct {
	Row, Col   int
	Rows, Cols int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index out of bounds: (%d, %d) in %dx%d matrix", e.Row, e.Col, e.Rows, e.Cols)
}

// Is makes errors.Is(err, ErrIndex) hold for every *IndexError.
func (e *IndexError) Is(target error) bool {
	return target == ErrIndex
}

// Matrix is a rows x cols grid of colours. Every cell is always populated.
type Matrix struct {
	rows, cols int
	cells      []colour.Colour
}

// New creates a rows x cols matrix filled with opaque black.
func New(rows, cols int) (*Matrix, error) {
	return Filled(rows, cols, colour.Black)
}

// Filled creates a rows x cols matrix with every cell set to c.
func Filled(rows, cols int, c colour.Colour) (*Matrix, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, cols)
	}
	cells := make([]colour.Colour, rows*cols)
	for i := range cells {
		cells[i] = c
	}
	return &Matrix{rows: rows, cols: cols, cells: cells}, nil
}

// FromRows builds a matrix from a rectangular slice of rows. The input is copied.
func FromRows(rows [][]colour.Colour) (*Matrix, error) {
	if len(rows) == 0 {
		return &Matrix{}, nil
	}
	cols := len(rows[0])
	m := &Matrix{rows: len(rows), cols: cols, cells: make([]colour.Colour, 0, len(rows)*cols)}
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrInvalidDimensions, i, len(row), cols)
		}
		m.cells = append(m.cells, row...)
	}
	return m, nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// InBounds reports whether (row, col) addresses a cell.
func (m *Matrix) InBounds(row, col int) bool {
	return row >= 0 && row < m.rows && col >= 0 && col < m.cols
}

// Get returns the colour at (row, col).
func (m *Matrix) Get(row, col int) (colour.Colour, error) {
	if !m.InBounds(row, col) {
		return colour.Colour{}, &IndexError{Row: row, Col: col, Rows: m.rows, Cols: m.cols}
	}
	return m.cells[row*m.cols+col], nil
}

// Set replaces the colour at (row, col) in place.
func (m *Matrix) Set(row, col int, c colour.Colour) error {
	if !m.InBounds(row, col) {
		return &IndexError{Row: row, Col: col, Rows: m.rows, Cols: m.cols}
	}
	m.cells[row*m.cols+col] = c
	return nil
}

// Row returns a copy of the given row.
func (m *Matrix) Row(row int) ([]colour.Colour, error) {
	if row < 0 || row >= m.rows {
		return nil, &IndexError{Row: row, Col: 0, Rows: m.rows, Cols: m.cols}
	}
	out := make([]colour.Colour, m.cols)
	copy(out, m.cells[row*m.cols:(row+1)*m.cols])
	return out, nil
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	cells := make([]colour.Colour, len(m.cells))
	copy(cells, m.cells)
	return &Matrix{rows: m.rows, cols: m.cols, cells: cells}
}

// Equal reports whether both matrices have the same shape and identical cells.
func (m *Matrix) Equal(other *Matrix) bool {
	if other == nil || m.rows != other.rows || m.cols != other.cols {
		return false
	}
	for i := range m.cells {
		if m.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Map returns a new matrix whose cells are fn applied to every cell of m.
// m itself is left untouched.
func (m *Matrix) Map(fn func(c colour.Colour, row, col int) colour.Colour) *Matrix {
	out := &Matrix{rows: m.rows, cols: m.cols, cells: make([]colour.Colour, len(m.cells))}
	for row := 0; row < m.rows; row++ {
		for col := 0; col < m.cols; col++ {
			i := row*m.cols + col
			out.cells[i] = fn(m.cells[i], row, col)
		}
	}
	return out
}

// Coords addresses a single cell.
type Coords struct {
	Row, Col int
}

// All returns an iterator over every cell in scan order.
func (m *Matrix) All() iter.Seq2[Coords, colour.Colour] {
	return func(yield func(Coords, colour.Colour) bool) {
		for i, c := range m.cells {
			if !yield(Coords{Row: i / m.cols, Col: i % m.cols}, c) {
				return
			}
		}
	}
}

// ScalePixel upscales by an integer factor using nearest neighbour: every cell
// becomes a factor x factor block.
func (m *Matrix) ScalePixel(factor int) (*Matrix, error) {
	return m.ScalePixelWithBorder(factor, nil)
}

// ScalePixelWithBorder upscales like ScalePixel and, when border is non-nil,
// paints the top row and left column of every block with it. Neighbouring
// blocks are separated by a one-cell line and each block keeps
// (factor-1)*(factor-1) cells of its source colour; the output size is always
// rows*factor x cols*factor. A factor of 1 returns a plain clone.
func (m *Matrix) ScalePixelWithBorder(factor int, border *colour.Colour) (*Matrix, error) {
	if factor < 1 {
		return nil, fmt.Errorf("%w: scale factor must be at least 1, got %d", ErrInvalidDimensions, factor)
	}
	if factor == 1 {
		return m.Clone(), nil
	}

	out := &Matrix{
		rows:  m.rows * factor,
		cols:  m.cols * factor,
		cells: make([]colour.Colour, len(m.cells)*factor*factor),
	}
	for row := 0; row < out.rows; row++ {
		by := row % factor
		for col := 0; col < out.cols; col++ {
			bx := col % factor
			c := m.cells[(row/factor)*m.cols+col/factor]
			if border != nil && (by == 0 || bx == 0) {
				c = *border
			}
			out.cells[row*out.cols+col] = c
		}
	}
	return out, nil
}

// Crop describes margins trimmed from each side of a field or image.
type Crop struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// IsZero reports whether the crop trims nothing.
func (c Crop) IsZero() bool {
	return c == Crop{}
}

// validate checks the crop against a width x height area and returns the remaining size.
func (c Crop) validate(width, height int) (int, int, error) {
	if c.Left < 0 || c.Top < 0 || c.Right < 0 || c.Bottom < 0 {
		return 0, 0, fmt.Errorf("%w: negative crop margin %+v", ErrInvalidDimensions, c)
	}
	w := width - c.Left - c.Right
	h := height - c.Top - c.Bottom
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("%w: crop %+v leaves nothing of %dx%d", ErrInvalidDimensions, c, width, height)
	}
	return w, h, nil
}

// Crop returns the sub-matrix left after trimming the given margins.
func (m *Matrix) Crop(c Crop) (*Matrix, error) {
	cols, rows, err := c.validate(m.cols, m.rows)
	if err != nil {
		return nil, err
	}
	out := &Matrix{rows: rows, cols: cols, cells: make([]colour.Colour, 0, rows*cols)}
	for row := c.Top; row < c.Top+rows; row++ {
		start := row*m.cols + c.Left
		out.cells = append(out.cells, m.cells[start:start+cols]...)
	}
	return out, nil
}
