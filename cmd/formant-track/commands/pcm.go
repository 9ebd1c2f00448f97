package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// openInput opens path, or stdin for "-"
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, nil
}

// decodePCM converts little-endian 16-bit PCM bytes to samples. A trailing
// odd byte is ignored.
func decodePCM(p []byte) []int16 {
	out := make([]int16, len(p)/2)
	for i := range out {
		out[i] = int16(p[i*2]) | int16(p[i*2+1])<<8
	}
	return out
}

// readPCM reads a whole input
func readPCM(r io.Reader) ([]int16, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return decodePCM(data), nil
}

// pcmReader hands out exactly n samples per call
type pcmReader struct {
	r   *bufio.Reader
	buf []byte
}

func newPCMReader(r io.Reader) *pcmReader {
	return &pcmReader{r: bufio.NewReader(r)}
}

// next reads n samples. It returns io.EOF when the input ends before n
// samples are available.
func (p *pcmReader) next(n int) ([]int16, error) {
	if cap(p.buf) < 2*n {
		p.buf = make([]byte, 2*n)
	}
	p.buf = p.buf[:2*n]

	if _, err := io.ReadFull(p.r, p.buf); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	return decodePCM(p.buf), nil
}
