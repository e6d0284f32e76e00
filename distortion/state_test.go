package distortion

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestStateRoundTrip(t *testing.T) {
	src := NewStore()
	src.Set(MasterBypass, 1)
	src.Set(InputVolume, 0.42)
	src.Set(Gain, 1.91)
	src.Set(OutputVolume, 1.33)
	src.Set(Special, 1)

	data, err := src.MarshalState()
	if err != nil {
		t.Fatalf("MarshalState: %v", err)
	}

	dst := NewStore()
	if err := dst.UnmarshalState(data); err != nil {
		t.Fatalf("UnmarshalState: %v", err)
	}
	for i := ParamID(0); i < NumParams; i++ {
		if dst.Get(i) != src.Get(i) {
			t.Fatalf("param %d: got %f want %f", i, dst.Get(i), src.Get(i))
		}
	}
}

func TestStateIsKeyedByID(t *testing.T) {
	s := NewStore()
	s.Set(Gain, 1.5)
	data, err := s.MarshalState()
	if err != nil {
		t.Fatalf("MarshalState: %v", err)
	}
	var raw struct {
		Version int                `json:"version"`
		Params  map[string]float64 `json:"params"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("state is not JSON: %v", err)
	}
	if raw.Version != 1 {
		t.Fatalf("version = %d, want 1", raw.Version)
	}
	if len(raw.Params) != int(NumParams) {
		t.Fatalf("params has %d keys, want %d", len(raw.Params), NumParams)
	}
	if raw.Params["2"] != 1.5 {
		t.Fatalf(`params["2"] = %f, want 1.5`, raw.Params["2"])
	}
}

func TestStateMissingKeysFallBackToDefaults(t *testing.T) {
	s := NewStore()
	s.Set(InputVolume, 0.1)
	s.Set(Gain, 1.9)

	if err := s.UnmarshalState([]byte(`{"version":1,"params":{"2":1.25,"99":3,"x":1}}`)); err != nil {
		t.Fatalf("UnmarshalState: %v", err)
	}
	if s.Get(Gain) != 1.25 {
		t.Fatalf("Gain = %f, want 1.25", s.Get(Gain))
	}
	if s.Get(InputVolume) != Specs[InputVolume].Default {
		t.Fatalf("InputVolume = %f, want default", s.Get(InputVolume))
	}
}

func TestStateClampsRestoredValues(t *testing.T) {
	s := NewStore()
	if err := s.UnmarshalState([]byte(`{"version":1,"params":{"1":9,"2":0}}`)); err != nil {
		t.Fatalf("UnmarshalState: %v", err)
	}
	if s.Get(InputVolume) != 1.5 || s.Get(Gain) != 1 {
		t.Fatalf("restored values not clamped: %+v", s.Snapshot())
	}
}

func TestMalformedStateLeavesStoreUntouched(t *testing.T) {
	blobs := []string{
		``,
		`not json`,
		`{"version":1,"params":{"2":1.5`,
		`{"version":2,"params":{"2":1.5}}`,
		`{"params":{"2":1.5}}`,
		`{"version":1}`,
		`{"version":1,"params":{"2":"loud"}}`,
	}
	for _, b := range blobs {
		s := NewStore()
		s.Set(Gain, 1.7)
		s.Set(Special, 1)
		before := s.Snapshot()

		err := s.UnmarshalState([]byte(b))
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("UnmarshalState(%q) err = %v, want ErrInvalidState", b, err)
		}
		if s.Snapshot() != before {
			t.Fatalf("UnmarshalState(%q) modified store: %+v", b, s.Snapshot())
		}
	}
}
