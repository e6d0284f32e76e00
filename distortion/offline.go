package distortion

import "fmt"

// DefaultBlockSize is the block length used by offline rendering when the
// caller passes zero.
const DefaultBlockSize = 512

// ProcessOffline runs whole planar channels through p in host-sized blocks,
// in place. Every channel is treated as both input and output.
func ProcessOffline(p Plugin, channels [][]float32, sampleRate float64, blockSize int) error {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	for ch := range channels {
		if len(channels[ch]) != frames {
			return fmt.Errorf("channel %d has %d frames, want %d", ch, len(channels[ch]), frames)
		}
	}

	p.Prepare(sampleRate, blockSize)
	numCh := len(channels)
	block := make([][]float32, numCh)
	for start := 0; start < frames; start += blockSize {
		end := min(start+blockSize, frames)
		for ch := range channels {
			block[ch] = channels[ch][start:end]
		}
		p.Process(block, numCh, numCh)
	}
	return nil
}
