package bank

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"huishoudpot/internal/core"
)

// Transaction is one bank statement line in normalized form. Amount is
// signed: negative for money leaving the account.
type Transaction struct {
	ID           string
	Date         time.Time
	Amount       float64
	Description  string
	Counterparty string
}

var ErrNoHeader = errors.New("statement has no header row")

var csvDateLayouts = []string{"02-01-2006", "2006-01-02", "02/01/2006", "20060102"}

// ParseCSV reads an ING or Rabobank statement export. The two banks use
// different separators, column names and date formats; the header row
// decides which dialect applies. Rows with a zero amount are skipped.
func ParseCSV(r io.Reader) ([]Transaction, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrNoHeader
	}

	reader := csv.NewReader(strings.NewReader(string(raw)))
	reader.Comma = detectSeparator(string(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, ErrNoHeader
	}
	cols := indexColumns(header)
	if cols.date < 0 || cols.amount < 0 {
		return nil, fmt.Errorf("unrecognized statement header: %v", header)
	}

	var out []Transaction
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("parse line %d: %w", line, err)
		}

		tx, ok, err := cols.transaction(record)
		if err != nil {
			return nil, fmt.Errorf("parse line %d: %w", line, err)
		}
		if ok {
			out = append(out, tx)
		}
	}
	return out, nil
}

// detectSeparator picks between the Rabobank semicolon and the ING comma
// by counting separators outside quotes in the header line.
func detectSeparator(content string) rune {
	header := content
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		header = content[:i]
	}
	semis, commas := 0, 0
	inQuotes := false
	for _, r := range header {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case ';':
			if !inQuotes {
				semis++
			}
		case ',':
			if !inQuotes {
				commas++
			}
		}
	}
	if semis >= commas {
		return ';'
	}
	return ','
}

type columns struct {
	date         int
	amount       int
	direction    int
	counterparty int
	description  []int
}

// indexColumns maps known header names to positions. Rabobank exports use
// Datum, Bedrag and numbered Omschrijving columns; ING uses Datum,
// "Bedrag (EUR)" with a separate Af Bij direction column.
func indexColumns(header []string) columns {
	cols := columns{date: -1, amount: -1, direction: -1, counterparty: -1}
	for i, name := range header {
		switch normalizeHeader(name) {
		case "datum", "date":
			cols.date = i
		case "bedrag", "bedrag (eur)", "amount":
			cols.amount = i
		case "af bij":
			cols.direction = i
		case "naam tegenpartij", "naam / omschrijving", "tegenrekening naam":
			cols.counterparty = i
		case "omschrijving", "omschrijving-1", "omschrijving-2", "omschrijving-3", "mededelingen":
			cols.description = append(cols.description, i)
		}
	}
	return cols
}

func normalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ToLower(strings.TrimSpace(name))
}

// transaction builds one Transaction from a record. The bool result is
// false for blank and zero-amount rows, which exports routinely contain.
func (c columns) transaction(record []string) (Transaction, bool, error) {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rawAmount := field(c.amount)
	if rawAmount == "" {
		return Transaction{}, false, nil
	}
	amount, err := core.ParseSignedAmount(rawAmount)
	if err != nil {
		return Transaction{}, false, fmt.Errorf("amount %q: %w", rawAmount, err)
	}
	if amount == 0 {
		return Transaction{}, false, nil
	}
	// ING reports unsigned amounts with a separate direction column.
	if strings.EqualFold(field(c.direction), "af") && amount > 0 {
		amount = -amount
	}

	rawDate := field(c.date)
	date, err := parseStatementDate(rawDate)
	if err != nil {
		return Transaction{}, false, err
	}

	parts := make([]string, 0, len(c.description))
	for _, i := range c.description {
		if v := field(i); v != "" {
			parts = append(parts, v)
		}
	}
	description := strings.Join(parts, " ")
	counterparty := field(c.counterparty)
	if description == "" {
		description = counterparty
	}

	return Transaction{
		Date:         date,
		Amount:       amount,
		Description:  description,
		Counterparty: counterparty,
	}, true, nil
}

func parseStatementDate(raw string) (time.Time, error) {
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}
