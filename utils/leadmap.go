package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cohortly/models"
)

// RawRow is one loosely-typed CRM export row keyed by human-readable column
// headers. JSON key order is preserved because balance-column discovery
// depends on the order columns appear in the export.
type RawRow struct {
	keys   []string
	values map[string]interface{}
}

// Set adds or replaces a column value, keeping first-seen key order.
func (r *RawRow) Set(key string, value interface{}) {
	if r.values == nil {
		r.values = make(map[string]interface{})
	}
	if _, seen := r.values[key]; !seen {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the raw value for a column and whether the column exists.
func (r *RawRow) Get(key string) (interface{}, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the column names in encounter order.
func (r *RawRow) Keys() []string {
	return r.keys
}

func (r *RawRow) UnmarshalJSON(data []byte) error {
	r.keys = nil
	r.values = make(map[string]interface{})

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("raw lead row must be a JSON object")
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", keyTok)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return err
		}
		r.Set(key, value)
	}
	// closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func (r RawRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseBool returns booleans unchanged and treats the text "yes"/"true"
// (case-insensitive) as true. Anything else, including absent input, is false.
func ParseBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s == "yes" || s == "true"
	}
	return false
}

// ParseNum returns numbers unchanged and parses currency-formatted text,
// stripping thousands separators. Returns nil instead of failing.
func ParseNum(value interface{}) *float64 {
	switch v := value.(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil
		}
		return &f
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}

// Date formats seen across CRM exports
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"02.01.2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// ParseDate interprets arbitrary date text as a calendar day. Empty input,
// the "-" placeholder and unparseable text all yield nil; the time-of-day
// portion of any parsed value is discarded.
func ParseDate(value interface{}) *time.Time {
	if t, ok := value.(time.Time); ok {
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &day
	}
	s, ok := value.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &day
		}
	}
	return nil
}

// BalanceColumns returns, in encounter order, every column name whose
// lowercased form contains "balance" but not "dop". "Balance DOP" is a date
// column and must not be mistaken for a currency column.
func BalanceColumns(row RawRow) []string {
	var cols []string
	for _, key := range row.Keys() {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "balance") && !strings.Contains(lower, "dop") {
			cols = append(cols, key)
		}
	}
	return cols
}

// Column used when no balance-like column exists in the export.
// TODO: surface a warning when this fallback fires so unexpected header
// schemas don't silently import empty balances.
const defaultBalanceColumn = "Balance"

// Columns the mapper consumes explicitly; anything else passes through
var mappedColumns = map[string]struct{}{
	"Record ID":           {},
	"Record":              {},
	"Email":               {},
	"Phone":               {},
	"Instagram":           {},
	"Company Name":        {},
	"Priority":            {},
	"Discovery Call Date": {},
	"Start Date":          {},
	"End Date":            {},
	"Date of Payment":     {},
	"Date of Payment 2":   {},
	"Date of Payment 3":   {},
	"Balance DOP":         {},
	"Support Date Booked": {},
	"Payment ":            {}, // trailing space is present in the export
	"Amount Paid":         {},
	"Amount Paid 2":       {},
	"Seats":               {},
	"Coupon %":            {},
	"Sessions Done":       {},
	"Paid Desposit":       {}, // sic, the export header carries the typo
	"Paid Full":           {},
	"Coupon Code":         {},
}

// MapLeadRow converts one raw export row into a typed lead record. It is a
// pure function and never fails: every parser degrades to a default or nil
// on malformed input, so any row shape produces a complete record.
func MapLeadRow(row RawRow) models.Lead {
	lead := models.Lead{
		RecordID:          optString(row, "Record ID"),
		FullName:          stringOr(row, "Record", "Unknown"),
		Email:             optString(row, "Email"),
		Phone:             optString(row, "Phone"),
		Instagram:         optString(row, "Instagram"),
		CompanyName:       dashString(row, "Company Name"),
		Priority:          stringOr(row, "Priority", "COLD"),
		DiscoveryCallDate: ParseDate(valueOf(row, "Discovery Call Date")),
		StartDate:         ParseDate(valueOf(row, "Start Date")),
		EndDate:           ParseDate(valueOf(row, "End Date")),
		DateOfPayment:     ParseDate(valueOf(row, "Date of Payment")),
		DateOfPayment2:    ParseDate(valueOf(row, "Date of Payment 2")),
		DateOfPayment3:    ParseDate(valueOf(row, "Date of Payment 3")),
		BalanceDOP:        ParseDate(valueOf(row, "Balance DOP")),
		SupportDateBooked: ParseDate(valueOf(row, "Support Date Booked")),
		PaymentAmount:     ParseNum(valueOf(row, "Payment ")),
		AmountPaid:        ParseNum(valueOf(row, "Amount Paid")),
		AmountPaid2:       ParseNum(valueOf(row, "Amount Paid 2")),
		Seats:             intOr(row, "Seats", 1),
		CouponPercent:     intOr(row, "Coupon %", 0),
		SessionsDone:      intOr(row, "Sessions Done", 0),
		PaidDeposit:       ParseBool(valueOf(row, "Paid Desposit")),
		PaidFull:          ParseBool(valueOf(row, "Paid Full")),
		CouponCode:        dashString(row, "Coupon Code"),
	}

	// The balance column name varies across exports; take the first
	// balance-like column as the primary value and a second one, when
	// present, as the secondary.
	balanceCols := BalanceColumns(row)
	consumed := map[string]struct{}{}
	primary := defaultBalanceColumn
	if len(balanceCols) > 0 {
		primary = balanceCols[0]
	}
	lead.Balance = ParseNum(valueOf(row, primary))
	consumed[primary] = struct{}{}
	if len(balanceCols) > 1 {
		lead.Balance2 = ParseNum(valueOf(row, balanceCols[1]))
		consumed[balanceCols[1]] = struct{}{}
	}

	// Everything without an explicit rule passes through as a string
	for _, key := range row.Keys() {
		if _, ok := mappedColumns[key]; ok {
			continue
		}
		if _, ok := consumed[key]; ok {
			continue
		}
		if s := optString(row, key); s != nil {
			if lead.Extra == nil {
				lead.Extra = make(map[string]string)
			}
			lead.Extra[key] = *s
		}
	}

	return lead
}

func valueOf(row RawRow, key string) interface{} {
	v, _ := row.Get(key)
	return v
}

func optString(row RawRow, key string) *string {
	v, ok := row.Get(key)
	if !ok || v == nil {
		return nil
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return nil
	}
	return &s
}

// dashString is optString with the "-" placeholder treated as absent
func dashString(row RawRow, key string) *string {
	s := optString(row, key)
	if s != nil && *s == "-" {
		return nil
	}
	return s
}

func stringOr(row RawRow, key, fallback string) string {
	if s := optString(row, key); s != nil {
		return *s
	}
	return fallback
}

func intOr(row RawRow, key string, fallback int) int {
	if n := ParseNum(valueOf(row, key)); n != nil {
		return int(*n)
	}
	return fallback
}
