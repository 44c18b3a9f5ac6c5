package hdraft

// Length-prefixed byte strings; no Huffman in this draft, so the full
// prefix width is available to the length integer (unlike HPACK's string
// codec, which reserves the top bit for a Huffman flag).
const stringLengthPrefix = 8

func encodeString(buf outputWriter, s string) {
	encodeInteger(buf, uint32(len(s)), stringLengthPrefix, 0)
	buf.WriteString(s)
}

// decodeString reads a length-prefixed string from r. When borrow is true
// the result aliases r's underlying buffer (valid only for the lifetime
// documented on Inflate/EndHeaders); otherwise it is copied.
func decodeString(r *byteReader, maxLen int, borrow bool) (string, error) {
	length, err := decodeInteger(r, stringLengthPrefix)
	if err != nil {
		return "", err
	}
	if maxLen > 0 && int(length) > maxLen {
		return "", ErrStringTooLong
	}
	if int(length) > r.Len() {
		return "", ErrStringTooLong
	}

	raw, err := r.Take(int(length))
	if err != nil {
		return "", ErrTruncated
	}

	if borrow {
		return bytesToString(raw), nil
	}
	return string(raw), nil
}
