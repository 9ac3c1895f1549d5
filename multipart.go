package mimicreq

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
	"strconv"
	"strings"
)

// webkitMultipartBoundary generates a boundary the way Blink/WebKit's form
// encoder does: a fixed prefix followed by 16 random alphanumeric chars.
//
// Blink: https://source.chromium.org/chromium/chromium/src/+/main:third_party/blink/renderer/platform/network/form_data_encoder.cc
// WebKit: https://github.com/WebKit/WebKit/blob/main/Source/WebCore/platform/network/FormDataBuilder.cpp
func webkitMultipartBoundary() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789AB"

	sb := strings.Builder{}
	sb.WriteString("----WebKitFormBoundary")

	for i := 0; i < 16; i++ {
		index, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters)-1)))
		if err != nil {
			panic(err)
		}
		sb.WriteByte(letters[index.Int64()])
	}

	return sb.String()
}

// firefoxMultipartBoundary generates a boundary the way Gecko's form
// submission code does: a fixed prefix followed by three random uint32s.
//
// https://searchfox.org/mozilla-central/source/dom/html/HTMLFormSubmission.cpp
func firefoxMultipartBoundary() string {
	sb := strings.Builder{}
	sb.WriteString("-------------------------")

	for i := 0; i < 3; i++ {
		var b [8]byte
		if _, err := rand.Read(b[:]); err != nil {
			panic(err)
		}
		u32 := binary.LittleEndian.Uint32(b[:])
		sb.WriteString(strconv.FormatUint(uint64(u32), 10))
	}

	return sb.String()
}
