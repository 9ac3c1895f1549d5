package mimicreq

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"golang.org/x/net/http2"
)

func TestH2SpecValidateNilIsNoop(t *testing.T) {
	var s *H2Spec
	assert.NoError(t, s.validate())
}

func TestH2SpecValidateAcceptsWellFormedSpec(t *testing.T) {
	s := &H2Spec{
		Settings:       []http2.Setting{{ID: http2.SettingHeaderTableSize, Val: 65536}},
		ConnectionFlow: 6291456,
		PriorityFrames: []PriorityFrame{{StreamID: 3, PriorityParam: http2.PriorityParam{Weight: 255}}},
	}
	assert.NoError(t, s.validate())
}

func TestH2SpecValidateRejectsOutOfRangeConnectionFlow(t *testing.T) {
	s := &H2Spec{ConnectionFlow: math.MaxUint32}
	assert.Error(t, s.validate())
}
