package id

import "github.com/rs/xid"

func Generate() string {
	return xid.New().String()
}

func Valid(s string) bool {
	id, err := xid.FromString(s)
	if err != nil {
		return false
	}
	return !id.IsNil() && !id.IsZero()
}

// Pair returns a key that is the same for (a, b) and (b, a).
func Pair(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}
