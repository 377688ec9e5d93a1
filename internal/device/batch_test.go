package device

import (
	"encoding/json"
	"testing"
)

func TestBatchAppend(t *testing.T) {
	t.Run("accepts samples below capacity", func(t *testing.T) {
		b := NewBatch(11)
		for k := 1; k <= 10; k++ {
			if !b.Append(Sample{Time: int64(k)}) {
				t.Fatalf("append %d rejected below capacity", k)
			}
			if b.Len() != k {
				t.Errorf("Len() = %d after %d appends", b.Len(), k)
			}
		}
	})

	t.Run("rejects appends at capacity", func(t *testing.T) {
		b := NewBatch(3)
		for k := 0; k < 3; k++ {
			if !b.Append(Sample{Time: int64(k)}) {
				t.Fatalf("append %d rejected below capacity", k)
			}
		}
		if b.Append(Sample{Time: 99}) {
			t.Error("append accepted at capacity")
		}
		if b.Len() != 3 {
			t.Errorf("Len() = %d; want 3 after rejected append", b.Len())
		}
	})

	t.Run("preserves collection order", func(t *testing.T) {
		b := NewBatch(5)
		for k := 0; k < 5; k++ {
			b.Append(Sample{Time: int64(k)})
		}
		for k, s := range b.Samples() {
			if s.Time != int64(k) {
				t.Errorf("samples[%d].Time = %d; want %d", k, s.Time, k)
			}
		}
	})
}

func TestBatchClear(t *testing.T) {
	b := NewBatch(4)
	b.Append(Sample{Time: 1})
	b.Append(Sample{Time: 2})
	b.Clear()
	if b.Len() != 0 {
		t.Fatalf("Len() = %d after Clear; want 0", b.Len())
	}
	if !b.Append(Sample{Time: 3}) {
		t.Error("append rejected after Clear")
	}
}

func TestUploadDocumentSerialization(t *testing.T) {
	t.Run("empty batch yields empty array", func(t *testing.T) {
		doc := buildDocument("pw", "node", nil)
		data, err := json.Marshal(doc)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		want := `{"clowny-cleartext-password":"pw","sensorname":"node","sensordata":[]}`
		if string(data) != want {
			t.Errorf("document = %s; want %s", data, want)
		}
	})

	t.Run("three samples yield three separated objects", func(t *testing.T) {
		samples := []Sample{
			{Time: 1, TemperatureC: 20.5, HumidityPct: 40},
			{Time: 2, TemperatureC: 21, HumidityPct: 41.5},
			{Time: 3, TemperatureC: -3.25, HumidityPct: 99},
		}
		doc := buildDocument("pw", "node", samples)
		data, err := json.Marshal(doc)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		want := `{"clowny-cleartext-password":"pw","sensorname":"node","sensordata":[` +
			`{"time":1,"temperature_C":20.5,"humidity_perc":40},` +
			`{"time":2,"temperature_C":21,"humidity_perc":41.5},` +
			`{"time":3,"temperature_C":-3.25,"humidity_perc":99}]}`
		if string(data) != want {
			t.Errorf("document = %s; want %s", data, want)
		}
	})
}
