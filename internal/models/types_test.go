package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateOnlySerialization(t *testing.T) {
	date := NewDateOnly(1996, time.December, 10)
	out, err := json.Marshal(date)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"1996-12-10"` {
		t.Fatalf("dates must serialize as YYYY-MM-DD, got %s", out)
	}

	var parsed DateOnly
	if err := json.Unmarshal([]byte(`"1996-12-10"`), &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !parsed.Time.Equal(date.Time) {
		t.Fatalf("round trip mismatch: %v vs %v", parsed.Time, date.Time)
	}

	if err := json.Unmarshal([]byte(`"december"`), &parsed); err == nil {
		t.Fatal("junk dates must not parse")
	}
}

func TestDateOnlyScanTruncatesTimestamps(t *testing.T) {
	var date DateOnly
	if err := date.Scan("1996-12-10 00:00:00+00:00"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if date.Format("2006-01-02") != "1996-12-10" {
		t.Fatalf("unexpected date %v", date)
	}
}

func TestJSONMapRoundTrip(t *testing.T) {
	payload := JSONMap{"note": "strong candidate", "score": float64(4)}
	value, err := payload.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var scanned JSONMap
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if scanned["note"] != "strong candidate" || scanned["score"] != float64(4) {
		t.Fatalf("round trip mismatch: %v", scanned)
	}

	var empty JSONMap
	if err := empty.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if empty != nil {
		t.Fatalf("nil column should scan to nil map, got %v", empty)
	}
}

func TestApplicationFieldNames(t *testing.T) {
	app := &Application{}
	seen := map[string]bool{}
	for _, field := range app.Fields() {
		if seen[field.Name] {
			t.Fatalf("duplicate field %s", field.Name)
		}
		seen[field.Name] = true
	}
	for name := range OptionalFields {
		if !seen[name] {
			t.Fatalf("optional field %s is not an application field", name)
		}
	}
	for _, bookkeeping := range []string{"updatedAt", "finishedAt", "stage", "id", "userId"} {
		if seen[bookkeeping] {
			t.Fatalf("bookkeeping field %s must not be completeness-checked", bookkeeping)
		}
	}
}
