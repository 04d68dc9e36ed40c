package rowstore

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnLetter converts a 1-indexed column number to its A1 letter form
// (1 -> "A", 26 -> "Z", 27 -> "AA").
func ColumnLetter(col int) string {
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}

// Cell builds an A1 cell address from 1-indexed column and row.
func Cell(col, row int) string {
	return fmt.Sprintf("%s%d", ColumnLetter(col), row)
}

// RowRange builds an A1 range covering columns 1..width of a single row,
// e.g. RowRange(8, 5) -> "A5:H5".
func RowRange(width, row int) string {
	return fmt.Sprintf("A%d:%s%d", row, ColumnLetter(width), row)
}

// ParseCell splits an A1 cell address into 1-indexed column and row.
func ParseCell(addr string) (col, row int, err error) {
	i := 0
	for i < len(addr) && addr[i] >= 'A' && addr[i] <= 'Z' {
		col = col*26 + int(addr[i]-'A') + 1
		i++
	}
	if i == 0 || i == len(addr) {
		return 0, 0, fmt.Errorf("invalid cell address %q", addr)
	}
	row, err = strconv.Atoi(addr[i:])
	if err != nil || row < 1 {
		return 0, 0, fmt.Errorf("invalid cell address %q", addr)
	}
	return col, row, nil
}

// ParseRange splits an A1 range ("A2:H2") into its corner cells. A bare
// cell address is treated as a 1x1 range.
func ParseRange(addr string) (startCol, startRow, endCol, endRow int, err error) {
	start, end, found := strings.Cut(addr, ":")
	if !found {
		end = start
	}
	startCol, startRow, err = ParseCell(start)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	endCol, endRow, err = ParseCell(end)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if endCol < startCol || endRow < startRow {
		return 0, 0, 0, 0, fmt.Errorf("inverted range %q", addr)
	}
	return startCol, startRow, endCol, endRow, nil
}
