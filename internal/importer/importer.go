// Package importer loads catalog products from CSV files.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"clubstore/internal/domain"
	"clubstore/internal/service/catalog"
)

// ProductCreator is the catalog write path used for every imported row.
type ProductCreator interface {
	Create(ctx context.Context, in catalog.CreateInput) (*domain.Product, error)
}

// Result summarises an import run.
type Result struct {
	Imported int
	Skipped  int
}

// CSVImporter reads product rows with a header line. Recognised columns are
// name, description, price (rupees), price_cents, image_url, category and
// stock_quantity. Unknown columns are ignored.
type CSVImporter struct {
	reader   *csv.Reader
	products ProductCreator
	logger   *log.Logger
}

func NewCSVImporter(r io.Reader, products ProductCreator, logger *log.Logger) *CSVImporter {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{reader: csvr, products: products, logger: logger}
}

// Run creates one product per row. Rows that duplicate an existing product
// are skipped; any other failure stops the import.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result

	headers, err := i.reader.Read()
	if err != nil {
		return res, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["name"]; !ok {
		return res, fmt.Errorf("missing name column")
	}
	_, hasRupees := index["price"]
	_, hasCents := index["price_cents"]
	if !hasRupees && !hasCents {
		return res, fmt.Errorf("missing price or price_cents column")
	}

	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return res, fmt.Errorf("read row %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		in, err := parseRow(record, index)
		if err != nil {
			return res, fmt.Errorf("row %d: %w", line, err)
		}

		p, err := i.products.Create(ctx, in)
		if errors.Is(err, domain.ErrAlreadyExists) {
			i.logger.Printf("importer: skip duplicate row=%d name=%q", line, in.Name)
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("row %d create %q: %w", line, in.Name, err)
		}
		i.logger.Printf("importer: created row=%d id=%s name=%q", line, p.ID, p.Name)
		res.Imported++
	}
	return res, nil
}

func parseRow(record []string, index map[string]int) (catalog.CreateInput, error) {
	in := catalog.CreateInput{
		Name:        pick(record, index, "name"),
		Description: pick(record, index, "description"),
		ImageURL:    pick(record, index, "image_url"),
		Category:    pick(record, index, "category"),
	}

	if raw := pick(record, index, "price_cents"); raw != "" {
		cents, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return in, fmt.Errorf("invalid price_cents %q", raw)
		}
		in.PriceCents = cents
	} else {
		cents, err := parseRupees(pick(record, index, "price"))
		if err != nil {
			return in, err
		}
		in.PriceCents = cents
	}

	if raw := pick(record, index, "stock_quantity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return in, fmt.Errorf("invalid stock_quantity %q", raw)
		}
		in.StockQuantity = n
	}
	return in, nil
}

// parseRupees converts "1299", "1,299" or "1299.5" into paise without going
// through floating point.
func parseRupees(raw string) (int64, error) {
	s := strings.ReplaceAll(strings.TrimPrefix(raw, "₹"), ",", "")
	if s == "" {
		return 0, fmt.Errorf("missing price")
	}
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 2 {
		return 0, fmt.Errorf("invalid price %q: more than two decimal places", raw)
	}
	rupees, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", raw)
	}
	var paise int64
	if frac != "" {
		frac += strings.Repeat("0", 2-len(frac))
		if paise, err = strconv.ParseInt(frac, 10, 64); err != nil {
			return 0, fmt.Errorf("invalid price %q", raw)
		}
	}
	return rupees*100 + paise, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
