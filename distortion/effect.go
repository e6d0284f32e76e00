package distortion

// Plugin is the capability a host adapter drives.
type Plugin interface {
	Prepare(sampleRate float64, blockSize int)
	Process(buf [][]float32, numIn int, numOut int)
	State() ([]byte, error)
	SetState(data []byte) error
}

// Info describes the effect to a host.
type Info struct {
	Name          string
	AcceptsMIDI   bool
	ProducesMIDI  bool
	TailSeconds   float64
	NumPrograms   int
	MaxChannels   int
	NumParameters int
}

// Effect owns a parameter store and the processor that reads it.
type Effect struct {
	params    *Store
	processor *Processor
}

var _ Plugin = (*Effect)(nil)

// NewEffect creates an effect with default parameters.
func NewEffect(opts ...ProcessorOption) (*Effect, error) {
	params := NewStore()
	proc, err := NewProcessor(params, opts...)
	if err != nil {
		return nil, err
	}
	return &Effect{params: params, processor: proc}, nil
}

// Params returns the store shared with UI and automation.
func (e *Effect) Params() *Store {
	return e.params
}

// Info returns static host metadata.
func (e *Effect) Info() Info {
	return Info{
		Name:          "Distortion",
		TailSeconds:   0,
		NumPrograms:   1,
		MaxChannels:   2,
		NumParameters: int(NumParams),
	}
}

// SupportsLayout reports whether the effect can run with the given channel
// counts: mono or stereo, with matching input and output.
func (e *Effect) SupportsLayout(numIn int, numOut int) bool {
	if numOut != 1 && numOut != 2 {
		return false
	}
	return numIn == numOut
}

// Prepare forwards stream settings to the processor.
func (e *Effect) Prepare(sampleRate float64, blockSize int) {
	e.processor.Prepare(sampleRate, blockSize)
}

// Process runs one block through the processor.
func (e *Effect) Process(buf [][]float32, numIn int, numOut int) {
	e.processor.Process(buf, numIn, numOut)
}

// State serialises the parameter values.
func (e *Effect) State() ([]byte, error) {
	return e.params.MarshalState()
}

// SetState restores parameter values from State output.
func (e *Effect) SetState(data []byte) error {
	return e.params.UnmarshalState(data)
}
