// Package ingest decodes the leads, referrals and sold exports into rows.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/leadflow/internal/common"
	"github.com/Veraticus/leadflow/internal/model"
)

const utf8BOM = "\ufeff"

// sniffBytes is how much of the input is inspected to pick a delimiter.
const sniffBytes = 4096

// ReadRows decodes a header-first delimited export. The first line names
// the columns; each later line becomes a Row. Blank lines are skipped and
// short rows leave their trailing columns empty.
func ReadRows(r io.Reader) ([]model.Row, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(sniffBytes)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("%w: %v", common.ErrParseInput, err)
	}

	reader := csv.NewReader(br)
	reader.Comma = detectDelimiter(head)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", common.ErrParseInput, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	var rows []model.Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrParseInput, err)
		}
		if blank(record) {
			continue
		}

		row := make(model.Row, len(header))
		for i, column := range header {
			if column == "" {
				continue
			}
			if i < len(record) {
				row[column] = record[i]
			} else {
				row[column] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// detectDelimiter picks the most frequent of comma, semicolon and tab in
// the first line, defaulting to comma.
func detectDelimiter(head []byte) rune {
	line := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		line = head[:i]
	}

	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
