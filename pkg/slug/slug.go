// Package slug derives URL-safe identifiers from free text.
package slug

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Make lowercases s, strips diacritics and joins the remaining
// alphanumeric runs with single hyphens.
func Make(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingHyphen = false
			continue
		}
		pendingHyphen = true
	}

	return b.String()
}

// WithSuffix appends a random n-character suffix, used where the base slug
// alone is not unique (listing titles repeat often).
func WithSuffix(s string, n int) string {
	base := Make(s)
	suffix := randomString(n)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

func randomString(n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(suffixAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			out[i] = suffixAlphabet[i%len(suffixAlphabet)]
			continue
		}
		out[i] = suffixAlphabet[idx.Int64()]
	}
	return string(out)
}
