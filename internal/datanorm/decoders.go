package datanorm

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/tealeg/xlsx/v3"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// decoder turns raw upload bytes into a header row plus data rows.
type decoder struct {
	name   string
	decode func(data []byte) ([][]string, error)
}

// decoders is the fallback chain: each entry gets the full buffer and the
// first one that yields a header row wins.
var decoders = []decoder{
	{name: "excelize", decode: decodeExcelize},
	{name: "xlsx", decode: decodeTolerantXLSX},
	{name: "delimited", decode: decodeDelimited},
}

var errNoHeader = errors.New("no header row")

func decodeExcelize(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func decodeTolerantXLSX(data []byte) ([][]string, error) {
	wb, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if len(wb.Sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	var rows [][]string
	err = wb.Sheets[0].ForEachRow(func(r *xlsx.Row) error {
		return r.ForEachCell(func(c *xlsx.Cell) error {
			x, y := c.GetCoordinates()
			for len(rows) <= y {
				rows = append(rows, nil)
			}
			for len(rows[y]) <= x {
				rows[y] = append(rows[y], "")
			}
			rows[y][x] = c.Value
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", wb.Sheets[0].Name, err)
	}
	return rows, nil
}

// delimiterCandidates are tried in order; ties go to the earlier candidate.
var delimiterCandidates = []rune{';', ',', '\t', '|'}

const sniffLines = 20

func decodeDelimited(data []byte) ([][]string, error) {
	switch c := Classify(data); c {
	case ClassDelimited:
	case ClassEmpty:
		return nil, errNoHeader
	default:
		return nil, fmt.Errorf("payload is %s, not delimited text", c)
	}

	text := toUTF8(data)
	text = strings.TrimPrefix(text, "\ufeff")

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse delimited text: %w", err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// toUTF8 returns data as a string, reading it as Windows-1252 when it is
// not valid UTF-8. Spreadsheet exports on Dutch Windows installs use it.
func toUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

// sniffDelimiter picks the candidate that splits the sampled lines into the
// same number of fields (more than one) most consistently. Quoted fields
// are not considered; the header line rarely contains quotes.
func sniffDelimiter(text string) rune {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() && len(lines) < sniffLines {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, sc.Text())
		}
	}
	if len(lines) == 0 {
		return ','
	}

	best, bestScore := ',', -1
	for _, d := range delimiterCandidates {
		header := strings.Count(lines[0], string(d))
		if header == 0 {
			continue
		}
		score := 0
		for _, l := range lines {
			if strings.Count(l, string(d)) == header {
				score++
			}
		}
		score = score*1000 + header
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}
