package wire

import (
	"encoding/json"
	"testing"
)

func TestValue_UnmarshalFloat(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`42.5`), &v); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if v.Kind() != KindFloat {
		t.Errorf("Kind = %s, want float", v.Kind())
	}
	if v.AsFloat() != 42.5 {
		t.Errorf("AsFloat = %v, want 42.5", v.AsFloat())
	}
}

func TestValue_UnmarshalInt(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`42`), &v); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if v.Kind() != KindInt {
		t.Errorf("Kind = %s, want int", v.Kind())
	}
	if v.AsInt() != 42 {
		t.Errorf("AsInt = %d, want 42", v.AsInt())
	}
}

func TestValue_UnmarshalExponentIsFloat(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`1e3`), &v); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if v.Kind() != KindFloat {
		t.Errorf("Kind = %s, want float", v.Kind())
	}
	if v.AsFloat() != 1000 {
		t.Errorf("AsFloat = %v, want 1000", v.AsFloat())
	}
}

func TestValue_UnmarshalString(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`"nominal"`), &v); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if v.Kind() != KindString {
		t.Errorf("Kind = %s, want string", v.Kind())
	}
	if v.AsString() != "nominal" {
		t.Errorf("AsString = %q, want nominal", v.AsString())
	}
}

func TestValue_UnmarshalBool(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`true`), &v); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if v.Kind() != KindBool {
		t.Errorf("Kind = %s, want bool", v.Kind())
	}
	if !v.AsBool() {
		t.Error("AsBool = false, want true")
	}
}

func TestValue_RejectsNonScalars(t *testing.T) {
	for _, raw := range []string{`null`, `{"a":1}`, `[1,2]`} {
		var v Value
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			t.Errorf("Unmarshal(%s) succeeded, want error", raw)
		}
	}
}

func TestValue_MarshalRoundTrip(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Float(42.5), `42.5`},
		{Int(7), `7`},
		{String("C"), `"C"`},
		{Bool(false), `false`},
	}
	for _, tc := range cases {
		data, err := json.Marshal(tc.v)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if string(data) != tc.want {
			t.Errorf("Marshal = %s, want %s", data, tc.want)
		}
	}
}

func TestValue_AsFloatWidensInt(t *testing.T) {
	if got := Int(3).AsFloat(); got != 3 {
		t.Errorf("AsFloat = %v, want 3", got)
	}
}

func TestFlexInt64(t *testing.T) {
	var f FlexInt64
	if err := json.Unmarshal([]byte(`1705328200123`), &f); err != nil {
		t.Fatalf("number failed: %v", err)
	}
	if f != 1705328200123 {
		t.Errorf("got %d, want 1705328200123", f)
	}

	if err := json.Unmarshal([]byte(`"1705328200123"`), &f); err != nil {
		t.Fatalf("string failed: %v", err)
	}
	if f != 1705328200123 {
		t.Errorf("got %d, want 1705328200123", f)
	}

	if err := json.Unmarshal([]byte(`"soon"`), &f); err == nil {
		t.Error("non-numeric string succeeded, want error")
	}
}

func TestStreamUpdate_Decode(t *testing.T) {
	raw := `{"type":"stream_update","stream":"module1.temperature","value":42.5,"unit":"C","datatype":"float"}`

	var upd StreamUpdate
	if err := json.Unmarshal([]byte(raw), &upd); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if upd.Stream != "module1.temperature" {
		t.Errorf("Stream = %q", upd.Stream)
	}
	if upd.Value.AsFloat() != 42.5 {
		t.Errorf("Value = %v, want 42.5", upd.Value.AsFloat())
	}
	if upd.Unit != "C" || upd.Datatype != "float" {
		t.Errorf("metadata = %q/%q, want C/float", upd.Unit, upd.Datatype)
	}
}

func TestNegotiation_Decode(t *testing.T) {
	raw := `{"type":"negotiation","data":{"streams":[{"id":"module1.temperature","unit":"C","datatype":"float"},{"id":"module2.rpm"}],"ping":{"latency_ms":12,"status":"connected"}}}`

	var neg Negotiation
	if err := json.Unmarshal([]byte(raw), &neg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(neg.Data.Streams) != 2 {
		t.Fatalf("streams = %d, want 2", len(neg.Data.Streams))
	}
	if neg.Data.Streams[0].ID != "module1.temperature" {
		t.Errorf("stream id = %q", neg.Data.Streams[0].ID)
	}
	if neg.Data.Ping == nil {
		t.Fatal("embedded ping telemetry missing")
	}
	if neg.Data.Ping.LatencyMs != 12 || neg.Data.Ping.Status != "connected" {
		t.Errorf("ping = %+v", neg.Data.Ping)
	}
}
