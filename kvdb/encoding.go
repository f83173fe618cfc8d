package kvdb

// Flat engines (leveldb, badger, radix) store every node under one byte key.
// Each subscript is escaped (0x00 -> 0x00 0xff) and terminated by 0x00 0x01,
// so the encoding of a key is a prefix of the encodings of all its
// descendants and of nothing else.

const (
	escByte  = 0x00
	escZero  = 0xff
	escTerm  = 0x01
	termSize = 2
)

func encodeKey(k Key) []byte {
	size := 0
	for _, sub := range k {
		size += len(sub) + termSize
	}
	buf := make([]byte, 0, size)
	for _, sub := range k {
		buf = appendSub(buf, sub)
	}
	return buf
}

func appendSub(buf []byte, sub string) []byte {
	for i := 0; i < len(sub); i++ {
		c := sub[i]
		if c == escByte {
			buf = append(buf, escByte, escZero)
			continue
		}
		buf = append(buf, c)
	}
	return append(buf, escByte, escTerm)
}

// decodeSub decodes the first subscript of b. It returns the subscript and
// the number of bytes consumed, or ok=false if b is not well formed.
func decodeSub(b []byte) (sub string, n int, ok bool) {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c != escByte {
			out = append(out, c)
			continue
		}
		if i+1 >= len(b) {
			return "", 0, false
		}
		switch b[i+1] {
		case escZero:
			out = append(out, escByte)
			i++
		case escTerm:
			return string(out), i + 2, true
		default:
			return "", 0, false
		}
	}
	return "", 0, false
}

// decodeKey is the inverse of encodeKey.
func decodeKey(b []byte) (Key, bool) {
	var k Key
	for len(b) > 0 {
		sub, n, ok := decodeSub(b)
		if !ok {
			return nil, false
		}
		k = append(k, sub)
		b = b[n:]
	}
	return k, true
}

// childCollector turns an ordered walk over a prefix into the list of
// distinct immediate child subscripts.
type childCollector struct {
	prefix   []byte
	children []string
}

func (c *childCollector) add(key []byte) {
	if len(key) <= len(c.prefix) {
		return
	}
	sub, _, ok := decodeSub(key[len(c.prefix):])
	if !ok {
		return
	}
	if n := len(c.children); n > 0 && c.children[n-1] == sub {
		return
	}
	c.children = append(c.children, sub)
}
