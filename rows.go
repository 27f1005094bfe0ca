package cryptofund

// Rows is the ordered list of rows being edited.
//
// The list always contains at least one row. Completing the trailing row appends a
// new blank row so that there is always somewhere to type the next ticker.
//
// Rows is not safe for concurrent use.
type Rows struct {
	rows []Row
}

// NewRows returns a list holding the given rows, or a single blank row if none is given.
func NewRows(rows ...Row) *Rows {
	l := &Rows{rows: append([]Row(nil), rows...)}
	if len(l.rows) == 0 {
		l.rows = append(l.rows, Row{})
	}
	return l
}

// Len returns the number of rows, it is never less than one.
func (l *Rows) Len() int { return len(l.rows) }

// Row returns the row at index i.
func (l *Rows) Row(i int) Row { return l.rows[i] }

// Last returns the index of the trailing row.
func (l *Rows) Last() int { return len(l.rows) - 1 }

// All returns a copy of the rows.
func (l *Rows) All() []Row { return append([]Row(nil), l.rows...) }

// SetField sets a single field of row i.
//
// If row i is the trailing row and it is now complete, a blank row is appended.
// Out of range indexes are ignored.
func (l *Rows) SetField(i int, f Field, value string) {
	if i < 0 || i >= len(l.rows) {
		return
	}
	l.rows[i] = l.rows[i].With(f, value)
	l.grow(i)
}

// Replace swaps row i with r, it follows the same growing rule as SetField.
func (l *Rows) Replace(i int, r Row) {
	if i < 0 || i >= len(l.rows) {
		return
	}
	l.rows[i] = r
	l.grow(i)
}

// AddRow appends a blank row.
func (l *Rows) AddRow() { l.rows = append(l.rows, Row{}) }

// RemoveRow removes row i. It does nothing on a single row list.
func (l *Rows) RemoveRow(i int) {
	if len(l.rows) <= 1 || i < 0 || i >= len(l.rows) {
		return
	}
	l.rows = append(l.rows[:i], l.rows[i+1:]...)
}

// grow appends a blank row when row i is the trailing one and is complete.
func (l *Rows) grow(i int) {
	if i == len(l.rows)-1 && l.rows[i].IsComplete() {
		l.rows = append(l.rows, Row{})
	}
}
