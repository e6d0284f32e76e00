package distortion

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// ParamID indexes one of the fixed effect parameters.
type ParamID int

const (
	MasterBypass ParamID = iota
	InputVolume
	Gain
	OutputVolume
	Special

	// NumParams is the number of parameters exposed by the effect.
	NumParams
)

// Valid reports whether id names a parameter.
func (id ParamID) Valid() bool {
	return id >= 0 && id < NumParams
}

// ParamSpec is the static description of a parameter.
type ParamSpec struct {
	ID      ParamID
	Name    string
	Min     float64
	Max     float64
	Default float64
}

// Specs lists the parameters in index order.
//
// Volume sliders span 0..1.5 (-100 dB .. ~7 dB after squaring), the gain
// slider 1..2 (0 dB .. ~12 dB).
var Specs = [NumParams]ParamSpec{
	{ID: MasterBypass, Name: "BYPASS", Min: 0, Max: 1, Default: 0},
	{ID: InputVolume, Name: "In", Min: 0, Max: 1.5, Default: 1},
	{ID: Gain, Name: "Gain", Min: 1, Max: 2, Default: 1},
	{ID: OutputVolume, Name: "Out", Min: 0, Max: 1.5, Default: 1},
	{ID: Special, Name: "Special", Min: 0, Max: 1, Default: 0},
}

// invalidValue is returned by Get for an unknown parameter.
const invalidValue = -1.0

// Store holds the current parameter values. Every value is an independent
// atomic word, so the audio thread can read while a control thread writes
// without locks or allocation.
type Store struct {
	values [NumParams]atomic.Uint64
}

// NewStore creates a store with every parameter at its default.
func NewStore() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Reset restores every parameter to its default.
func (s *Store) Reset() {
	for i := range Specs {
		s.values[i].Store(math.Float64bits(Specs[i].Default))
	}
}

// Count returns the number of parameters.
func (s *Store) Count() int {
	return int(NumParams)
}

// Get returns the current value of id, or -1 when id is unknown.
func (s *Store) Get(id ParamID) float64 {
	if !id.Valid() {
		return invalidValue
	}
	return math.Float64frombits(s.values[id].Load())
}

// Set clamps v into the parameter's range and stores it. Unknown ids and NaN
// are ignored.
func (s *Store) Set(id ParamID, v float64) {
	if !id.Valid() || math.IsNaN(v) {
		return
	}
	spec := Specs[id]
	v = dspcore.Clamp(v, spec.Min, spec.Max)
	s.values[id].Store(math.Float64bits(v))
}

// Name returns the short display name of id.
func (s *Store) Name(id ParamID) string {
	if !id.Valid() {
		return ""
	}
	return Specs[id].Name
}

// Range returns the inclusive bounds of id.
func (s *Store) Range(id ParamID) (lo, hi float64) {
	if !id.Valid() {
		return 0, 0
	}
	return Specs[id].Min, Specs[id].Max
}

// Default returns the default value of id, or -1 when id is unknown.
func (s *Store) Default(id ParamID) float64 {
	if !id.Valid() {
		return invalidValue
	}
	return Specs[id].Default
}

// ID returns the persistence/automation key of a parameter: its index in decimal.
func (s *Store) ID(id ParamID) string {
	return FormatID(id)
}

// FormatID returns the decimal key of id, or "" when id is unknown.
func FormatID(id ParamID) string {
	if !id.Valid() {
		return ""
	}
	return strconv.Itoa(int(id))
}

// ParseID is the inverse of FormatID.
func ParseID(key string) (ParamID, bool) {
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	id := ParamID(n)
	if !id.Valid() || FormatID(id) != key {
		return 0, false
	}
	return id, true
}

// DisplayText renders the parameter for a label. Toggles show their bare
// name; volume and gain show the name and the squared-law level in dB.
func (s *Store) DisplayText(id ParamID) string {
	switch id {
	case MasterBypass, Special:
		return Specs[id].Name
	case InputVolume, OutputVolume:
		return fmt.Sprintf("%s\n%.1f\ndB", Specs[id].Name, sliderDecibels(s.Get(id)))
	case Gain:
		return fmt.Sprintf("%s\n%.1f dB", Specs[id].Name, sliderDecibels(s.Get(id)))
	default:
		return ""
	}
}

// Settings is a plain copy of every parameter value.
type Settings struct {
	MasterBypass float64
	InputVolume  float64
	Gain         float64
	OutputVolume float64
	Special      float64
}

// DefaultSettings returns the parameter defaults.
func DefaultSettings() Settings {
	var st Settings
	for _, spec := range Specs {
		st.Set(spec.ID, spec.Default)
	}
	return st
}

// Value returns the field for id, or -1 when id is unknown.
func (st Settings) Value(id ParamID) float64 {
	switch id {
	case MasterBypass:
		return st.MasterBypass
	case InputVolume:
		return st.InputVolume
	case Gain:
		return st.Gain
	case OutputVolume:
		return st.OutputVolume
	case Special:
		return st.Special
	default:
		return invalidValue
	}
}

// Set assigns the field for id without clamping.
func (st *Settings) Set(id ParamID, v float64) {
	switch id {
	case MasterBypass:
		st.MasterBypass = v
	case InputVolume:
		st.InputVolume = v
	case Gain:
		st.Gain = v
	case OutputVolume:
		st.OutputVolume = v
	case Special:
		st.Special = v
	}
}

// Snapshot copies the current values. Each read is atomic on its own; the
// snapshot as a whole is not.
func (s *Store) Snapshot() Settings {
	var st Settings
	for i := ParamID(0); i < NumParams; i++ {
		st.Set(i, s.Get(i))
	}
	return st
}

// Apply sets every parameter from st, clamping as Set does.
func (s *Store) Apply(st Settings) {
	for i := ParamID(0); i < NumParams; i++ {
		s.Set(i, st.Value(i))
	}
}
