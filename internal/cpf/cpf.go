// Package cpf validates Brazilian CPF taxpayer numbers.
//
// A CPF is nine payload digits followed by two check digits. Short forms of
// nine or ten digits are accepted and treated as if right-padded with zeros;
// the padding only affects the computation, never the stored value.
package cpf

// Valid reports whether s is a well-formed CPF with correct check digits.
func Valid(s string) bool {
	if len(s) < 9 || len(s) > 11 {
		return false
	}

	var d [11]int
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		d[i] = int(c - '0')
	}

	return checkDigit(d[:9], 10) == d[9] && checkDigit(d[:10], 11) == d[10]
}

// checkDigit computes the weighted mod-11 check digit over digits, with
// weights counting down from start.
func checkDigit(digits []int, start int) int {
	sum := 0
	for i, v := range digits {
		sum += v * (start - i)
	}
	return ((sum * 10) % 11) % 10
}
