package mimicreq

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mimicreq/mimicreq/internal/header"
)

func TestHeaderPlanApplyStashesOrderKeys(t *testing.T) {
	h := make(http.Header)
	h.Set("Accept", "*/*")
	plan := &HeaderPlan{
		PseudoOrder: []string{":method", ":authority", ":path"},
		Order:       []string{"Accept", "User-Agent"},
	}
	plan.Apply(h)

	assert.Equal(t, []string{":method", ":authority", ":path"}, pseudoHeaderOrder(h))
	assert.Equal(t, []string{"Accept", "User-Agent"}, declaredHeaderOrder(h))
}

func TestSortedHeaderOrdersDeclaredKeysAndStripsOrderKeys(t *testing.T) {
	h := make(http.Header)
	h.Set("Zebra", "z")
	h.Set("Accept", "*/*")
	h.Set("User-Agent", "mimicreq")
	(&HeaderPlan{Order: []string{"User-Agent", "Accept"}}).Apply(h)

	kvs := SortedHeader(h)

	var names []string
	for _, kv := range kvs {
		names = append(names, kv.Key)
	}
	assert.NotContains(t, names, header.OrderKey)
	assert.NotContains(t, names, header.PseudoOrderKey)

	uaIdx, acceptIdx := indexOf(names, "User-Agent"), indexOf(names, "Accept")
	assert.True(t, uaIdx >= 0 && acceptIdx >= 0 && uaIdx < acceptIdx)
}

func indexOf(ss []string, target string) int {
	for i, s := range ss {
		if s == target {
			return i
		}
	}
	return -1
}
