package genome

// Bases lists the four nucleotides in a fixed order used for indexed tables.
const Bases = "ACGT"

// BaseIndex returns the index of a base within Bases, or -1 for anything
// that is not an unambiguous uppercase nucleotide.
func BaseIndex(base byte) int {
	switch base {
	case 'A':
		return 0
	case 'C':
		return 1
	case 'G':
		return 2
	case 'T':
		return 3
	}
	return -1
}

// Complement returns the complement of a single base.
func Complement(base byte) byte {
	switch base {
	case 'A':
		return 'T'
	case 'T':
		return 'A'
	case 'G':
		return 'C'
	case 'C':
		return 'G'
	case 'a':
		return 't'
	case 't':
		return 'a'
	case 'g':
		return 'c'
	case 'c':
		return 'g'
	default:
		return 'N'
	}
}

// ReverseComplement returns the reverse complement of a DNA sequence.
func ReverseComplement(seq string) string {
	n := len(seq)
	var buf [64]byte
	var result []byte
	if n <= len(buf) {
		result = buf[:n]
	} else {
		result = make([]byte, n)
	}
	for i := 0; i < n; i++ {
		result[i] = Complement(seq[n-1-i])
	}
	return string(result)
}
