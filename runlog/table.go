package runlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// A Table is the rectangular numeric content of a timing log, row-major.
type Table [][]float64

var ErrEmptyTable = errors.New("No data in table")

// Read a whitespace-separated numeric table.  Text from `#` to the end of a line is a comment and
// blank lines are ignored.  Every row must have the same number of columns.

func ParseTable(input io.Reader) (Table, error) {
	var t Table
	scanner := bufio.NewScanner(input)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		l := scanner.Text()
		if ix := strings.IndexByte(l, '#'); ix != -1 {
			l = l[:ix]
		}
		fields := strings.Fields(l)
		if len(fields) == 0 {
			continue
		}
		row := make([]float64, len(fields))
		for i, f := range fields {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("Line %d: bad number %q", lineNo, f)
			}
			row[i] = x
		}
		if len(t) > 0 && len(row) != len(t[0]) {
			return nil, fmt.Errorf("Line %d: %d columns, expected %d", lineNo, len(row), len(t[0]))
		}
		t = append(t, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(t) == 0 {
		return nil, ErrEmptyTable
	}
	return t, nil
}

func ReadTable(filename string) (Table, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTable(f)
}

func (t Table) Rows() int {
	return len(t)
}

func (t Table) Cols() int {
	if len(t) == 0 {
		return 0
	}
	return len(t[0])
}

func (t Table) Cell(row, col int) (float64, error) {
	if row < 0 || row >= t.Rows() || col < 0 || col >= t.Cols() {
		return 0, fmt.Errorf("Cell (%d,%d) outside %dx%d table", row, col, t.Rows(), t.Cols())
	}
	return t[row][col], nil
}
