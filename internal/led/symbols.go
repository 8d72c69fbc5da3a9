package led

// Slots expands bits into the line level of every clock unit, packed MSB
// first. Each bit becomes t.Units() slots: High(bit) ones followed by zeros.
// The final byte is zero padded, which keeps the line low.
func Slots(bits []bool, t BitTiming) []byte {
	units := t.Units()
	out := make([]byte, (len(bits)*units+7)/8)
	n := 0
	for _, b := range bits {
		high := t.High(b)
		for u := 0; u < units; u++ {
			if u < high {
				out[n/8] |= 0x80 >> uint(n%8)
			}
			n++
		}
	}
	return out
}

// LowSlots returns enough zero bytes to cover slots clock units.
func LowSlots(slots int) []byte {
	return make([]byte, (slots+7)/8)
}
