package mimicreq

import (
	"net/http"

	"github.com/mimicreq/mimicreq/internal/header"
)

// HeaderPlan captures the declared write order for a request's regular
// headers and its HTTP/2 pseudo-headers. Since http.Header is just a map,
// Go's transport picks its own order for anything the caller doesn't
// pin down; the order is stashed as ordinary (if unusual-looking) header
// entries under header.OrderKey / header.PseudoOrderKey so it survives
// untouched through everything standing between a Request and the wire
// codec that finally honors it, without changing any interface along
// the way.
type HeaderPlan struct {
	PseudoOrder []string
	Order       []string
}

// Apply records p's declared order into h. Headers already present in h
// keep their values; only the ordering keys are touched.
func (p *HeaderPlan) Apply(h http.Header) {
	if p == nil {
		return
	}
	if len(p.PseudoOrder) > 0 {
		h[header.PseudoOrderKey] = p.PseudoOrder
	}
	if len(p.Order) > 0 {
		h[header.OrderKey] = p.Order
	}
}

// pseudoHeaderOrder reads back the pseudo-header order stashed by Apply,
// if any, without exposing the ordering keys as regular header entries.
func pseudoHeaderOrder(h http.Header) []string {
	return h[header.PseudoOrderKey]
}

func declaredHeaderOrder(h http.Header) []string {
	return h[header.OrderKey]
}

// SortedHeader returns the key/value pairs of h in the order declared via
// Apply, with the two ordering keys themselves stripped out. Keys with no
// declared position follow every declared key and keep their relative
// order from range-ing over h,
// which Go (since 1.12) iterates in a randomized but otherwise stable-per-
// call order; real callers always set an order for the headers they care
// about, so this is only a tiebreaker for anything left unordered.
func SortedHeader(h http.Header) []header.KeyValues {
	order := declaredHeaderOrder(h)

	kvs := make([]header.KeyValues, 0, len(h))
	for k, v := range h {
		if k == header.OrderKey || k == header.PseudoOrderKey {
			continue
		}
		kvs = append(kvs, header.KeyValues{Key: k, Values: v})
	}
	header.SortKeyValues(kvs, order)
	return kvs
}
