package waveformat

import "sort"

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

func absInt64(a int64) int64 {
	if a < 0 {
		return -a
	}
	return a
}

func effectiveBits(f Format) uint16 {
	if f.Tag == TagIEEEFloat {
		return f.BitsPerSample
	}
	return f.ValidBits
}

// Less implements the 8-step strict-weak-ordering comparator from the
// spec, ranking a against b relative to basis. It returns -1, 0 or 1.
func Less(basis, a, b Format) int {
	// 1. S24-in-32 PCM sorts after everything else.
	if a.IsS24In32() != b.IsS24In32() {
		if a.IsS24In32() {
			return 1
		}
		return -1
	}

	// 2. Smaller channel-count distance to basis.
	da := absInt(int(a.Channels) - int(basis.Channels))
	db := absInt(int(b.Channels) - int(basis.Channels))
	if da != db {
		return cmpInt(da, db)
	}

	// 3. Smaller sample-rate distance to basis; tie-break by higher rate.
	ra := absInt64(int64(a.SampleRate) - int64(basis.SampleRate))
	rb := absInt64(int64(b.SampleRate) - int64(basis.SampleRate))
	if ra != rb {
		return cmpInt64(ra, rb)
	}
	if a.SampleRate != b.SampleRate {
		if a.SampleRate > b.SampleRate {
			return -1
		}
		return 1
	}

	// 4. Higher effective bit depth (valid bits, or container bits for floats).
	ea, eb := effectiveBits(a), effectiveBits(b)
	if ea != eb {
		if ea > eb {
			return -1
		}
		return 1
	}

	// 5. Subformat equals basis subformat.
	asub := a.SubFormat == basis.SubFormat
	bsub := b.SubFormat == basis.SubFormat
	if asub != bsub {
		if asub {
			return -1
		}
		return 1
	}

	// 6. Smaller bits-per-sample distance; smaller valid-bits distance.
	bpa := absInt(int(a.BitsPerSample) - int(basis.BitsPerSample))
	bpb := absInt(int(b.BitsPerSample) - int(basis.BitsPerSample))
	if bpa != bpb {
		return cmpInt(bpa, bpb)
	}
	vba := absInt(int(a.ValidBits) - int(basis.ValidBits))
	vbb := absInt(int(b.ValidBits) - int(basis.ValidBits))
	if vba != vbb {
		return cmpInt(vba, vbb)
	}

	// 7. Channel mask equals basis mask when both non-zero.
	if basis.ChannelMask != 0 {
		amatch := a.ChannelMask != 0 && a.ChannelMask == basis.ChannelMask
		bmatch := b.ChannelMask != 0 && b.ChannelMask == basis.ChannelMask
		if amatch != bmatch {
			if amatch {
				return -1
			}
			return 1
		}
	}

	// 8. Smaller format-tag distance (EXTENSIBLE preferred last-resort).
	ta := tagDistance(a.Tag, basis.Tag)
	tb := tagDistance(b.Tag, basis.Tag)
	if ta != tb {
		return cmpInt(ta, tb)
	}

	return 0
}

// tagDistance ranks an exact tag match first, then PCM/float mismatch,
// then TagExtensible last regardless of basis (it is always the
// last-resort container tag per spec).
func tagDistance(tag, basis Tag) int {
	if tag == TagExtensible {
		return 2
	}
	if tag == basis {
		return 0
	}
	return 1
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Sort orders formats by similarity to basis, ascending (most similar
// first). The sort is stable so formats tying on all 8 criteria retain
// their probe-order relative position.
func Sort(basis Format, formats []Format) {
	sort.SliceStable(formats, func(i, j int) bool {
		return Less(basis, formats[i], formats[j]) < 0
	})
}
