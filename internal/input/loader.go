package input

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadTicketIDs reads the ticket id column of the CSV file at path.
// The first row is always treated as a header and dropped.
func LoadTicketIDs(path string, column int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ticket list: %w", err)
	}
	defer f.Close()

	ids, err := ReadTicketIDs(f, column)
	if err != nil {
		return nil, fmt.Errorf("read ticket list %s: %w", path, err)
	}
	return ids, nil
}

// ReadTicketIDs parses CSV rows from r and returns the value of column for
// every row after the first, in stream order. Rows without that column are skipped.
func ReadTicketIDs(r io.Reader, column int) ([]string, error) {
	if column < 0 {
		return nil, fmt.Errorf("invalid id column %d", column)
	}

	br := bufio.NewReader(r)
	if head, _ := br.Peek(len(utf8BOM)); string(head) == string(utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	ids := []string{}
	first := true
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return ids, nil
		}
		if err != nil {
			return nil, err
		}
		if first {
			first = false
			continue
		}
		if len(row) <= column {
			continue
		}
		ids = append(ids, strings.TrimSpace(row[column]))
	}
}
