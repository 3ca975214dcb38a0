package bank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecords(t *testing.T) {
	records, err := parseRecords([]byte(usdPayload))
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, Record{Source: "USD", Target: "EUR", Rate: 0.85, Time: "2024-01-01T00:00:00Z"}, records[0])

	for _, raw := range []string{"", "null", `{"target":"EUR"}`, `[1,2]`, `[{"target":"EUR","rate":"0.85"}]`, "[{"} {
		_, err := parseRecords([]byte(raw))
		assert.ErrorIs(t, err, ErrParse, raw)
	}
}

func TestValidDataset(t *testing.T) {
	tests := []struct {
		raw   string
		valid bool
	}{
		{usdPayload, true},
		{`[{"target":"EUR"}]`, true},
		{`[{}]`, false},
		{`[]`, false},
		{`[1]`, false},
		{`{"error":"unauthorized"}`, false},
		{`<html></html>`, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.valid, validDataset([]byte(tc.raw)), tc.raw)
	}
}

func TestEmptyDataset(t *testing.T) {
	assert.True(t, emptyDataset(nil))
	assert.True(t, emptyDataset([]Record{}))
	assert.True(t, emptyDataset([]Record{{}}))
	assert.False(t, emptyDataset([]Record{{Target: "EUR", Rate: 0.85}}))
}

func TestPayloadTimestamp(t *testing.T) {
	ts, ok := payloadTimestamp([]byte(usdPayload))
	require.True(t, ok)
	assert.True(t, ts.Equal(jan1))

	ts, ok = payloadTimestamp([]byte(`[{"target":"EUR","rate":0.85}]`))
	require.True(t, ok)
	assert.True(t, ts.Equal(time.Unix(0, 0)))

	_, ok = payloadTimestamp([]byte(`{"time":"2024-01-01T00:00:00Z"}`))
	assert.False(t, ok)

	_, ok = payloadTimestamp([]byte(`[{`))
	assert.False(t, ok)
}

func TestParseTime(t *testing.T) {
	want := time.Date(2018, 8, 31, 10, 43, 31, 0, time.UTC)
	assert.True(t, parseTime("2018-08-31T10:43:31+0000").Equal(want))
	assert.True(t, parseTime("2018-08-31T10:43:31Z").Equal(want))
	assert.True(t, parseTime("2018-08-31T12:43:31+02:00").Equal(want))
	assert.True(t, parseTime("yesterday").Equal(epoch))
	assert.True(t, parseTime("").Equal(epoch))
}
