package product

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/chars3/caplink-store/apperr"
	"github.com/chars3/caplink-store/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

// ImportResult counts the outcome of a bulk upload.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

var importColumns = []string{"name", "description", "price", "imageurl"}

// Import reads products from a .csv or .xlsx upload and inserts them for the
// seller in batches. Rows without a name or a positive price are skipped.
func (s *Service) Import(ctx context.Context, sellerID, filename string, r io.Reader) (*ImportResult, error) {
	var rows rowSource
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows = newCSVRows(r)
	case ".xlsx":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, apperr.Invalid("failed to read upload")
		}
		xl, err := xlsx.OpenBinary(data)
		if err != nil {
			return nil, apperr.Invalid("failed to parse Excel file")
		}
		if len(xl.Sheets) == 0 {
			return nil, apperr.Invalid("Excel file has no sheets")
		}
		rows = &sheetRows{sheet: xl.Sheets[0]}
	default:
		return nil, apperr.Invalidf("unsupported file type %q, expected .csv or .xlsx", filepath.Ext(filename))
	}

	header, err := rows.next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperr.Invalid("file is empty or missing header row")
		}
		return nil, apperr.Invalid("failed to read header row")
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	batch := make([]models.Product, 0, s.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.db.WithContext(ctx).CreateInBatches(&batch, s.batchSize).Error; err != nil {
			return apperr.Store("failed to insert products", err)
		}
		result.Imported += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		record, err := rows.next()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			result.Skipped++
			continue
		}
		if err != nil {
			return nil, apperr.Invalid("failed to read upload")
		}
		p, ok := parseRow(record, index)
		if !ok {
			result.Skipped++
			continue
		}
		p.SellerID = sellerID
		batch = append(batch, p)
		if len(batch) >= s.batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	log.Info().
		Str("seller_id", sellerID).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("products imported")
	return result, nil
}

// Export writes the seller's live products as an xlsx workbook.
func (s *Service) Export(ctx context.Context, sellerID string, w io.Writer) error {
	var products []models.Product
	if err := s.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("published_at DESC").Order("id").
		Find(&products).Error; err != nil {
		return apperr.Store("failed to fetch products", err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return apperr.Store("failed to create Excel sheet", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range []string{"id", "name", "description", "price", "imageUrl", "publishedAt"} {
		headerRow.AddCell().SetValue(h)
	}
	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.Price.StringFixed(2))
		row.AddCell().SetValue(p.ImageURL)
		row.AddCell().SetValue(p.PublishedAt.Format("2006-01-02 15:04:05"))
	}

	if err := file.Write(w); err != nil {
		return apperr.Store("failed to write Excel file", err)
	}
	return nil
}

// columnIndex maps the required columns to their header positions.
func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range []string{"name", "price"} {
		if _, ok := index[col]; !ok {
			return nil, apperr.Invalidf("missing %q column, expected %s", col, strings.Join(importColumns, ","))
		}
	}
	return index, nil
}

func parseRow(record []string, index map[string]int) (models.Product, bool) {
	get := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	name := get("name")
	price, err := decimal.NewFromString(get("price"))
	if name == "" || err != nil || !price.IsPositive() {
		return models.Product{}, false
	}
	return models.Product{
		Name:        name,
		Description: get("description"),
		Price:       price.Round(2),
		ImageURL:    get("imageurl"),
	}, true
}

// rowSource yields records until io.EOF.
type rowSource interface {
	next() ([]string, error)
}

type csvRows struct {
	r *csv.Reader
}

func newCSVRows(r io.Reader) *csvRows {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return &csvRows{r: cr}
}

func (c *csvRows) next() ([]string, error) {
	return c.r.Read()
}

type sheetRows struct {
	sheet *xlsx.Sheet
	pos   int
}

func (s *sheetRows) next() ([]string, error) {
	if s.pos >= len(s.sheet.Rows) {
		return nil, io.EOF
	}
	row := s.sheet.Rows[s.pos]
	s.pos++
	if row == nil {
		return []string{}, nil
	}

	record := make([]string, 0, len(row.Cells))
	for _, cell := range row.Cells {
		record = append(record, cell.String())
	}
	return record, nil
}
