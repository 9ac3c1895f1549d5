package pipeline

// State is the lifecycle of a Pipeline, driven one Frame at a time by
// whatever reads the response body off the wire.
type State int

const (
	// StateInit is the Pipeline before any Body Frame has reached it.
	StateInit State = iota
	// StateDecoding is the normal steady state: frames feed the decoder
	// chain and decoded bytes flow out.
	StateDecoding
	// StateDrainTail is entered once the decoder chain reports a clean
	// logical end of the compressed stream. Any further Data frame is
	// either empty or trailing garbage; only an End frame can close it out.
	StateDrainTail
	// StateDone is terminal: the body and the decoder both ended cleanly.
	StateDone
	// StateError is terminal: a decode error or a transport error was
	// reported while decoding.
	StateError
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateDecoding:
		return "decoding"
	case StateDrainTail:
		return "drain-tail"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// FrameKind tags a Frame as carrying data, signaling body completion, or
// carrying a transport error.
type FrameKind int

const (
	FrameData FrameKind = iota
	FrameEnd
	FrameError
)

// Frame is one unit handed to Pipeline.Feed: either a chunk of raw bytes
// straight off the wire, the transport's signal that the body is over, or
// a transport-level error (a dropped connection mid-body, for instance).
type Frame struct {
	Kind FrameKind
	Data []byte
	Err  error
}

// DataFrame builds a FrameData frame carrying chunk.
func DataFrame(chunk []byte) Frame { return Frame{Kind: FrameData, Data: chunk} }

// EndFrame builds the FrameEnd frame that signals the body ended.
func EndFrame() Frame { return Frame{Kind: FrameEnd} }

// ErrFrame builds a FrameError frame carrying a transport-level failure.
func ErrFrame(err error) Frame { return Frame{Kind: FrameError, Err: err} }

// Pipeline turns a Content-Encoding header value and a stream of Body
// Frames into decoded bytes. A nil decoder chain (unrecognized or absent
// Content-Encoding) makes it a passthrough: bytes flow through unchanged
// and no trailing-data check applies, since there's no framing to check
// against.
type Pipeline struct {
	state State
	dec   Decoder
	err   error
}

// New builds a Pipeline for the given Content-Encoding header value.
// Multiple comma-separated tokens are decoded in reverse order, since
// Content-Encoding lists transformations in the order they were applied
// and they must be undone outermost (last-applied) first. If any token
// isn't recognized
// the whole chain is abandoned and the Pipeline passes bytes through
// unchanged, since there's no way to partially decode an encoding stack.
func New(contentEncoding string) *Pipeline {
	tokens := splitTokens(contentEncoding)
	if len(tokens) == 0 {
		return &Pipeline{state: StateInit}
	}

	stages := make([]Decoder, 0, len(tokens))
	for i := len(tokens) - 1; i >= 0; i-- {
		d, ok := newDecoderForToken(tokens[i])
		if !ok {
			return &Pipeline{state: StateInit}
		}
		stages = append(stages, d)
	}

	if len(stages) == 1 {
		return &Pipeline{state: StateInit, dec: stages[0]}
	}
	return &Pipeline{state: StateInit, dec: newChainDecoder(stages)}
}

// State reports the Pipeline's current lifecycle state.
func (p *Pipeline) State() State { return p.state }

// Feed advances the Pipeline by one Body Frame and returns whatever
// decoded bytes that frame makes available. Once State is StateDone or
// StateError, Feed is a no-op that returns the stored error, if any.
func (p *Pipeline) Feed(f Frame) ([]byte, error) {
	switch p.state {
	case StateError:
		return nil, p.err
	case StateDone:
		return nil, nil
	}
	switch f.Kind {
	case FrameError:
		return p.fail(f.Err)
	case FrameEnd:
		return p.finish()
	default:
		return p.push(f.Data)
	}
}

func (p *Pipeline) push(chunk []byte) ([]byte, error) {
	switch p.state {
	case StateError:
		return nil, p.err
	case StateDone:
		return nil, nil
	}

	if p.dec == nil {
		p.state = StateDecoding
		return chunk, nil
	}

	p.state = StateDecoding
	out, eos, err := p.dec.Push(chunk)
	if err != nil {
		return p.fail(err)
	}
	if eos {
		p.state = StateDrainTail
	}
	return out, nil
}

func (p *Pipeline) finish() ([]byte, error) {
	switch p.state {
	case StateError:
		return nil, p.err
	case StateDone:
		return nil, nil
	}

	if p.dec == nil {
		p.state = StateDone
		return nil, nil
	}
	if err := p.dec.Finish(); err != nil {
		return p.fail(err)
	}
	p.state = StateDone
	return nil, nil
}

func (p *Pipeline) fail(err error) ([]byte, error) {
	p.state = StateError
	p.err = err
	return nil, err
}

// chainDecoder threads raw bytes through an ordered stack of Decoders,
// each stage's decoded output becoming the next stage's input. Every
// format is self-delimiting, so a stage reaching its own logical end of
// stream needs no signal from upstream; it falls out of decoding the
// bytes it was actually given.
type chainDecoder struct {
	stages []Decoder
	eos    []bool
}

func newChainDecoder(stages []Decoder) *chainDecoder {
	return &chainDecoder{stages: stages, eos: make([]bool, len(stages))}
}

func (c *chainDecoder) Push(chunk []byte) ([]byte, bool, error) {
	data := chunk
	for i, st := range c.stages {
		if len(data) == 0 && !c.eos[i] {
			return nil, false, nil
		}
		out, eos, err := st.Push(data)
		if err != nil {
			return nil, false, err
		}
		c.eos[i] = eos
		data = out
	}

	allEOS := true
	for _, e := range c.eos {
		if !e {
			allEOS = false
			break
		}
	}
	return data, allEOS, nil
}

func (c *chainDecoder) Finish() error {
	for _, st := range c.stages {
		if err := st.Finish(); err != nil {
			return err
		}
	}
	return nil
}
