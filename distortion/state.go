package distortion

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

const stateVersion = 1

// ErrInvalidState is returned when a state blob cannot be restored.
var ErrInvalidState = errors.New("invalid distortion state")

// stateBlob is the persisted form: parameter values keyed by FormatID.
type stateBlob struct {
	Version int                `json:"version"`
	Params  map[string]float64 `json:"params"`
}

// MarshalState encodes the current parameter values.
func (s *Store) MarshalState() ([]byte, error) {
	blob := stateBlob{
		Version: stateVersion,
		Params:  make(map[string]float64, NumParams),
	}
	for i := ParamID(0); i < NumParams; i++ {
		blob.Params[FormatID(i)] = s.Get(i)
	}
	return json.Marshal(blob)
}

// UnmarshalState restores parameter values from a blob produced by
// MarshalState. Unknown keys are ignored and missing keys fall back to
// defaults. A blob that fails to decode leaves the store untouched.
func (s *Store) UnmarshalState(data []byte) error {
	st, err := decodeState(data)
	if err != nil {
		return err
	}
	s.Apply(st)
	return nil
}

func decodeState(data []byte) (Settings, error) {
	var blob stateBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if blob.Version != stateVersion {
		return Settings{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidState, blob.Version)
	}
	if blob.Params == nil {
		return Settings{}, fmt.Errorf("%w: missing params", ErrInvalidState)
	}

	st := DefaultSettings()
	for key, v := range blob.Params {
		id, ok := ParseID(key)
		if !ok {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Settings{}, fmt.Errorf("%w: param %s is not finite", ErrInvalidState, key)
		}
		st.Set(id, v)
	}
	return st, nil
}
