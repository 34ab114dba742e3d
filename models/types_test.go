package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnits_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    Units
		wantErr bool
	}{
		{`50`, 50, false},
		{`"50"`, 50, false},
		{`" 7 "`, 7, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`10.0`, 10, false},
		{`-3`, -3, false},
		{`1.5`, 0, true},
		{`"abc"`, 0, true},
		{`true`, 0, true},
		{`1000000000000`, 1000000000000, false},
		{`1000000000001`, 0, true},
		{`"9223372036854775808"`, 0, true},
		{`-9223372036854775809`, 0, true},
		{`1e19`, 0, true},
		{`9.2e18`, 0, true},
		{`1e3`, 1000, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var u Units
			err := json.Unmarshal([]byte(tt.in), &u)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, u)
		})
	}
}

func TestUnits_MissingField(t *testing.T) {
	var p Payment
	require.NoError(t, json.Unmarshal([]byte(`{"smsCredits":"5"}`), &p))
	assert.Equal(t, Units(5), p.SMSCredits)
	assert.Zero(t, p.WhatsappCredits)
}

func TestDecimal(t *testing.T) {
	var d Decimal
	require.NoError(t, json.Unmarshal([]byte(`"49.99"`), &d))
	assert.Equal(t, Decimal("49.99"), d)
	assert.InDelta(t, 49.99, d.Float(), 1e-9)

	require.NoError(t, json.Unmarshal([]byte(`12`), &d))
	assert.Equal(t, Decimal("12"), d)

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	assert.Error(t, json.Unmarshal([]byte(`"ten"`), &d))
}

func TestDecimal_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  interface{}
		want Decimal
	}{
		{"nil", nil, ""},
		{"string", "1.50", "1.50"},
		{"bytes", []byte("2.25"), "2.25"},
		{"float", 20.5, "20.5"},
		{"int", int64(20), "20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Decimal
			require.NoError(t, d.Scan(tt.src))
			assert.Equal(t, tt.want, d)
		})
	}

	var d Decimal
	assert.Error(t, d.Scan(true))

	v, err := Decimal("").Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
