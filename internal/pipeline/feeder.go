package pipeline

import "io"

// byteFeeder hands out at most one byte per Read/ReadByte call. Decoders
// that check for io.ByteReader use ReadByte directly; decoders that wrap
// their source in a bufio.Reader still only ever pull one byte per fill,
// since bufio issues exactly one Read to the underlying source per fill
// and accepts whatever it gets. That keeps pos an exact count of how many
// compressed input bytes a decoder actually consumed, which is what lets
// the replay decoders (see replayCore in decoder.go) tell trailing garbage apart from a
// stream that simply isn't finished arriving yet.
type byteFeeder struct {
	data []byte
	pos  int
}

func (f *byteFeeder) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if f.pos >= len(f.data) {
		return 0, io.EOF
	}
	p[0] = f.data[f.pos]
	f.pos++
	return 1, nil
}

func (f *byteFeeder) ReadByte() (byte, error) {
	if f.pos >= len(f.data) {
		return 0, io.EOF
	}
	c := f.data[f.pos]
	f.pos++
	return c, nil
}
