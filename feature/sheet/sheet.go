package sheet

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"catalog-sync/core/models"
	"catalog-sync/feature/ecom"
	"catalog-sync/feature/retail"
)

// Column headers of the spreadsheet export.
const (
	ColSKU              = "SKU"
	ColDescriptionShort = "US_Description_Short"
	ColDescriptionLong  = "US_Description_Long"
	ColTitleShort       = "US_Title_Short"
	ColMetaTitle        = "US_Meta_Title"
	ColImages           = "Images"
	ColWeight           = "Weight_Value"
)

// Columns lists every column the reader understands.
var Columns = []string{
	ColSKU, ColDescriptionShort, ColDescriptionLong, ColTitleShort, ColMetaTitle, ColImages, ColWeight,
}

var (
	// ErrMissingHeader is returned for an empty file.
	ErrMissingHeader = errors.New("missing header row")
	// ErrMissingColumn is returned when the SKU column is absent.
	ErrMissingColumn = errors.New("missing required column")
)

// Row is one product row. Number is the spreadsheet line, header is 1.
type Row struct {
	Number           int
	SKU              string
	ShortDescription string
	LongDescription  string
	TitleShort       string
	MetaTitle        string
	Images           string
	Weight           string
}

// Sheet is a parsed export.
type Sheet struct {
	// Rows holds rows with a SKU.
	Rows []Row
	// Total counts rows read, within the limit.
	Total int
	// Skipped lists the line numbers of rows without a SKU.
	Skipped []int
	// Present lists the known columns found in the header.
	Present []string
}

// SKUs returns the SKUs of the rows in order.
func (s *Sheet) SKUs() []string {
	out := make([]string, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = r.SKU
	}
	return out
}

// ReadFile opens and parses path.
func ReadFile(path string, limit int) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sheet: %w", err)
	}
	defer f.Close()
	return Read(f, limit)
}

// Read parses an export. A positive limit caps the rows read.
func Read(r io.Reader, limit int) (*Sheet, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	if _, ok := index[ColSKU]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColSKU)
	}

	s := &Sheet{}
	for _, c := range Columns {
		if _, ok := index[c]; ok {
			s.Present = append(s.Present, c)
		}
	}

	line := 1
	for limit <= 0 || s.Total < limit {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("error reading row %d: %w", line, err)
		}
		s.Total++

		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return clean(record[i])
		}

		row := Row{
			Number:           line,
			SKU:              get(ColSKU),
			ShortDescription: get(ColDescriptionShort),
			LongDescription:  get(ColDescriptionLong),
			TitleShort:       get(ColTitleShort),
			MetaTitle:        get(ColMetaTitle),
			Images:           get(ColImages),
			Weight:           get(ColWeight),
		}
		if row.SKU == "" {
			s.Skipped = append(s.Skipped, line)
			continue
		}
		s.Rows = append(s.Rows, row)
	}
	return s, nil
}

// clean trims a cell, normalizes line endings and drops "nan" exports.
func clean(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "nan") {
		return ""
	}
	v = strings.ReplaceAll(v, "\r\n", "\n")
	return strings.ReplaceAll(v, "\r", "\n")
}

// Desired returns the desired values of the row for one operation.
func (r Row) Desired(op models.Operation) map[string]string {
	switch op {
	case models.OpCustomFields:
		return map[string]string{
			retail.LabelTitleShort: r.TitleShort,
			retail.LabelMetaTitle:  r.MetaTitle,
		}
	case models.OpWeight:
		return map[string]string{retail.WeightField: r.Weight}
	case models.OpDescriptions:
		return map[string]string{
			ecom.FieldShort: r.ShortDescription,
			ecom.FieldLong:  r.LongDescription,
		}
	case models.OpImages:
		return map[string]string{ecom.FieldImages: r.Images}
	default:
		return map[string]string{}
	}
}
