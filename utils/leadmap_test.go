package utils

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBool(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  bool
	}{
		{"native true", true, true},
		{"native false", false, false},
		{"yes", "yes", true},
		{"Yes mixed case", "Yes", true},
		{"TRUE upper", "TRUE", true},
		{"true with spaces", "  true  ", true},
		{"no", "no", false},
		{"empty string", "", false},
		{"dash placeholder", "-", false},
		{"number", float64(1), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBool(tt.input))
		})
	}
}

func TestParseNum(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  *float64
	}{
		{"native float", float64(42.5), Pointer(42.5)},
		{"native int", 7, Pointer(7.0)},
		{"plain string", "19.99", Pointer(19.99)},
		{"thousands separator", "1,000.00", Pointer(1000.0)},
		{"millions", "1,234,567.89", Pointer(1234567.89)},
		{"leading spaces", "  250 ", Pointer(250.0)},
		{"negative", "-50", Pointer(-50.0)},
		{"empty string", "", nil},
		{"dash placeholder", "-", nil},
		{"garbage", "n/a", nil},
		{"nil", nil, nil},
		{"bool", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNum(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestParseDate(t *testing.T) {
	day := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	tests := []struct {
		name  string
		input interface{}
		want  *time.Time
	}{
		{"iso date", "2024-03-15", day(2024, time.March, 15)},
		{"rfc3339", "2024-03-15T10:30:00Z", day(2024, time.March, 15)},
		{"datetime", "2024-03-15 10:30:00", day(2024, time.March, 15)},
		{"us slashes", "03/15/2024", day(2024, time.March, 15)},
		{"short slashes", "3/5/2024", day(2024, time.March, 5)},
		{"long form", "March 15, 2024", day(2024, time.March, 15)},
		{"empty", "", nil},
		{"dash placeholder", "-", nil},
		{"garbage", "soon", nil},
		{"nil", nil, nil},
		{"number", float64(20240315), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestRawRowPreservesKeyOrder(t *testing.T) {
	var row RawRow
	err := json.Unmarshal([]byte(`{"Zeta":1,"Alpha":2,"Mid":3}`), &row)
	require.NoError(t, err)

	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, row.Keys())

	v, ok := row.Get("Alpha")
	require.True(t, ok)
	assert.Equal(t, float64(2), v)

	// Marshal round-trips in the same order
	out, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Zeta":1,"Alpha":2,"Mid":3}`, string(out))
	assert.Equal(t, `{"Zeta":1,"Alpha":2,"Mid":3}`, string(out))
}

func TestRawRowRejectsNonObject(t *testing.T) {
	var row RawRow
	assert.Error(t, json.Unmarshal([]byte(`[1,2,3]`), &row))
}

func TestBalanceColumns(t *testing.T) {
	tests := []struct {
		name string
		json string
		want []string
	}{
		{
			"dop excluded, order preserved",
			`{"Balance":1,"Balance DOP":"2024-01-01","Extra Balance":2}`,
			[]string{"Balance", "Extra Balance"},
		},
		{
			"case insensitive match",
			`{"Record":"x","BALANCE 2":5}`,
			[]string{"BALANCE 2"},
		},
		{
			"no balance columns",
			`{"Record":"x","Email":"a@b.c"}`,
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var row RawRow
			require.NoError(t, json.Unmarshal([]byte(tt.json), &row))
			assert.Equal(t, tt.want, BalanceColumns(row))
		})
	}
}

func TestMapLeadRow(t *testing.T) {
	var row RawRow
	err := json.Unmarshal([]byte(`{
		"Record ID": "R1",
		"Record": "Jane Doe",
		"Email": "jane@example.com",
		"Seats": "2",
		"Paid Desposit": "Yes",
		"Payment ": "1,000.00",
		"Balance": "500.00",
		"Start Date": "2024-03-01"
	}`), &row)
	require.NoError(t, err)

	lead := MapLeadRow(row)

	require.NotNil(t, lead.RecordID)
	assert.Equal(t, "R1", *lead.RecordID)
	assert.Equal(t, "Jane Doe", lead.FullName)
	require.NotNil(t, lead.Email)
	assert.Equal(t, "jane@example.com", *lead.Email)
	assert.Equal(t, 2, lead.Seats)
	assert.True(t, lead.PaidDeposit)
	assert.False(t, lead.PaidFull)
	require.NotNil(t, lead.PaymentAmount)
	assert.InDelta(t, 1000.0, *lead.PaymentAmount, 1e-9)
	require.NotNil(t, lead.Balance)
	assert.InDelta(t, 500.0, *lead.Balance, 1e-9)
	require.NotNil(t, lead.StartDate)
	assert.Equal(t, "2024-03-01", lead.StartDate.Format("2006-01-02"))
	assert.Nil(t, lead.Balance2)
	assert.Empty(t, lead.Extra)
}

func TestMapLeadRowDefaults(t *testing.T) {
	var row RawRow
	require.NoError(t, json.Unmarshal([]byte(`{}`), &row))

	lead := MapLeadRow(row)

	assert.Nil(t, lead.RecordID)
	assert.Equal(t, "Unknown", lead.FullName)
	assert.Equal(t, "COLD", lead.Priority)
	assert.Equal(t, 1, lead.Seats)
	assert.Equal(t, 0, lead.CouponPercent)
	assert.Equal(t, 0, lead.SessionsDone)
	assert.False(t, lead.PaidDeposit)
	assert.False(t, lead.PaidFull)
	assert.Nil(t, lead.Balance)
}

func TestMapLeadRowVariantBalanceColumn(t *testing.T) {
	var row RawRow
	err := json.Unmarshal([]byte(`{
		"Record": "Bob",
		"Remaining Balance": "750",
		"Balance Q2": "100",
		"Balance DOP": "2024-06-01"
	}`), &row)
	require.NoError(t, err)

	lead := MapLeadRow(row)

	require.NotNil(t, lead.Balance)
	assert.InDelta(t, 750.0, *lead.Balance, 1e-9)
	require.NotNil(t, lead.Balance2)
	assert.InDelta(t, 100.0, *lead.Balance2, 1e-9)
	require.NotNil(t, lead.BalanceDOP)
	assert.Equal(t, "2024-06-01", lead.BalanceDOP.Format("2006-01-02"))
	// Consumed balance columns must not leak into the passthrough map
	assert.NotContains(t, lead.Extra, "Remaining Balance")
	assert.NotContains(t, lead.Extra, "Balance Q2")
}

func TestMapLeadRowDashPlaceholders(t *testing.T) {
	var row RawRow
	err := json.Unmarshal([]byte(`{
		"Record": "Ann",
		"Company Name": "-",
		"Coupon Code": "-"
	}`), &row)
	require.NoError(t, err)

	lead := MapLeadRow(row)

	assert.Nil(t, lead.CompanyName)
	assert.Nil(t, lead.CouponCode)
}

func TestMapLeadRowExtraPassthrough(t *testing.T) {
	var row RawRow
	err := json.Unmarshal([]byte(`{
		"Record": "Cleo",
		"Referral Source": "Instagram ad",
		"Notes": "Follow up in May"
	}`), &row)
	require.NoError(t, err)

	lead := MapLeadRow(row)

	require.NotNil(t, lead.Extra)
	assert.Equal(t, "Instagram ad", lead.Extra["Referral Source"])
	assert.Equal(t, "Follow up in May", lead.Extra["Notes"])
	assert.NotContains(t, lead.Extra, "Record")
}
