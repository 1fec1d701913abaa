package reads

import "fmt"

// ReferenceLength returns the number of reference bases consumed by a CIGAR
// string (operations M, D, N, = and X).
func ReferenceLength(cigar string) (int, error) {
	if cigar == "*" || cigar == "" {
		return 0, fmt.Errorf("missing CIGAR")
	}
	length := 0
	num := 0
	digits := 0
	for i := 0; i < len(cigar); i++ {
		c := cigar[i]
		if c >= '0' && c <= '9' {
			num = num*10 + int(c-'0')
			digits++
			continue
		}
		if digits == 0 {
			return 0, fmt.Errorf("invalid CIGAR %q: operation %q without length", cigar, c)
		}
		switch c {
		case 'M', 'D', 'N', '=', 'X':
			length += num
		case 'I', 'S', 'H', 'P':
		default:
			return 0, fmt.Errorf("invalid CIGAR %q: unknown operation %q", cigar, c)
		}
		num, digits = 0, 0
	}
	if digits != 0 {
		return 0, fmt.Errorf("invalid CIGAR %q: trailing length %d", cigar, num)
	}
	return length, nil
}
