package utils

import (
	"unicode/utf8"
)

// MakeRuneByteSlices decodes txt into its runes along with the byte offset at
// which each rune starts. Word positions inside the service are rune indexed;
// byte offsets are kept so responses can point back into the original bytes.
func MakeRuneByteSlices(txt string) ([]rune, []int) {
	runesCount := utf8.RuneCountInString(txt)
	runes := make([]rune, runesCount)
	bytes := make([]int, runesCount)

	bytesOffset := 0
	l := len(txt)
	for i := 0; i < runesCount && bytesOffset < l; i++ {
		ch, chSize := utf8.DecodeRuneInString(txt[bytesOffset:])
		runes[i] = ch
		bytes[i] = bytesOffset
		bytesOffset += chSize
	}
	return runes, bytes
}
