package bank

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tidwall/gjson"
)

// ErrParse indicates a payload that is not a JSON array of rate records.
var ErrParse = errors.New("malformed rates payload")

// Record is one entry of the remote rates payload.
type Record struct {
	Source string  `json:"source,omitempty"`
	Target string  `json:"target"`
	Rate   float64 `json:"rate"`
	Time   string  `json:"time,omitempty"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.999999999Z0700",
}

// parseRecords decodes a payload. An empty array is a valid, empty dataset.
func parseRecords(raw []byte) ([]Record, error) {
	if len(raw) == 0 || !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsArray() {
		return nil, ErrParse
	}
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return records, nil
}

// validDataset reports whether a fetched payload is worth caching: a JSON
// array whose first element is a non-empty object.
func validDataset(raw []byte) bool {
	if !gjson.ValidBytes(raw) {
		return false
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsArray() {
		return false
	}
	first := doc.Get("0")
	return first.IsObject() && len(first.Map()) > 0
}

// emptyDataset reports a dataset with no usable first record, such as the
// placeholder produced when a transport failure is swallowed.
func emptyDataset(records []Record) bool {
	return len(records) == 0 || records[0] == (Record{})
}

// payloadTimestamp extracts the timestamp of the first record without
// decoding the whole payload. ok is false for unparseable payloads.
func payloadTimestamp(raw []byte) (ts time.Time, ok bool) {
	if !gjson.ValidBytes(raw) {
		return time.Time{}, false
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsArray() {
		return time.Time{}, false
	}
	return parseTime(doc.Get("0.time").String()), true
}

func recordsTimestamp(records []Record) time.Time {
	if len(records) == 0 {
		return epoch
	}
	return parseTime(records[0].Time)
}

var epoch = time.Unix(0, 0).UTC()

// parseTime falls back to the Unix epoch when value is absent or unparseable.
func parseTime(value string) time.Time {
	if value == "" {
		return epoch
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return epoch
}

func usableRate(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 0) && !math.IsNaN(rate)
}
