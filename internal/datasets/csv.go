package datasets

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ziggway/insight/internal/reviews"
)

// Column aliases accepted for each review field. Headers are
// normalized to lowercase with underscores before matching, so both
// marketplace exports ("review_comment_message") and hand-built files
// ("Comment") resolve.
var columnAliases = map[string][]string{
	"id":      {"review_id", "id"},
	"order":   {"order_id", "order"},
	"score":   {"review_score", "score", "rating"},
	"title":   {"review_comment_title", "title"},
	"comment": {"review_comment_message", "comment", "message", "review_text"},
}

type columnIndex map[string]int

// ParseReviews reads a review CSV and converts each row into a create
// command. Rows without a comment are skipped; rows without an id get
// a positional one. Returns ErrInvalidFile when the header lacks id,
// order, or comment columns.
func ParseReviews(r io.Reader) ([]reviews.CreateCommand, error) {
	reader := newReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrInvalidFile, err)
	}

	index, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var cmds []reviews.CreateCommand
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrInvalidFile, row+2, err)
		}
		row++

		comment := strings.TrimSpace(field(record, index, "comment"))
		if comment == "" {
			continue
		}

		cmd := reviews.CreateCommand{
			ExternalID: strings.TrimSpace(field(record, index, "id")),
			OrderID:    strings.TrimSpace(field(record, index, "order")),
			Comment:    comment,
		}
		if cmd.ExternalID == "" {
			cmd.ExternalID = fmt.Sprintf("row-%d", row)
		}
		if s := strings.TrimSpace(field(record, index, "score")); s != "" {
			if v, err := strconv.Atoi(s); err == nil && v >= 1 && v <= 5 {
				cmd.Score = &v
			}
		}
		if t := strings.TrimSpace(field(record, index, "title")); t != "" {
			cmd.Title = &t
		}

		cmds = append(cmds, cmd)
	}

	return cmds, nil
}

// CountRows reports the number of data rows in a CSV stream.
func CountRows(r io.Reader) (int, error) {
	reader := newReader(r)

	count := -1 // header does not count
	for {
		if _, err := reader.Read(); err == io.EOF {
			break
		} else if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidFile, err)
		}
		count++
	}
	if count < 0 {
		count = 0
	}
	return count, nil
}

// newReader builds a csv reader with the separator sniffed from the
// header line. Some marketplace exports use ";" instead of ",".
func newReader(r io.Reader) *csv.Reader {
	buffered := bufio.NewReader(r)
	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1

	if line, err := buffered.Peek(1024); err == nil || err == io.EOF {
		header := string(line)
		if i := strings.IndexByte(header, '\n'); i >= 0 {
			header = header[:i]
		}
		if strings.Count(header, ";") > strings.Count(header, ",") {
			reader.Comma = ';'
		}
	}

	return reader
}

func resolveColumns(header []string) (columnIndex, error) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeHeader(h)
	}

	index := make(columnIndex)
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			for i, h := range normalized {
				if h == alias {
					index[field] = i
					break
				}
			}
			if _, ok := index[field]; ok {
				break
			}
		}
	}

	for _, required := range []string{"id", "order", "comment"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: missing %s column", ErrInvalidFile, required)
		}
	}
	return index, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.TrimPrefix(h, "\ufeff")
	return h
}

func field(record []string, index columnIndex, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}
