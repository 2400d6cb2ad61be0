package parser

// Primes is the list-address vocabulary of a program: 1 followed by the primes,
// one entry per row or column of the largest glyph.
type Primes struct {
	values []int
}

// NewPrimes returns the first n addresses (1, 2, 3, 5, 7, ...).
func NewPrimes(n int) Primes {
	if n < 1 {
		n = 1
	}
	values := make([]int, 0, n)
	values = append(values, 1)
	for candidate := 2; len(values) < n; candidate++ {
		if isPrime(candidate) {
			values = append(values, candidate)
		}
	}
	return Primes{values: values}
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	for d := 2; d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// At returns the address for row or weight index i.
func (p Primes) At(i int) int {
	return p.values[i]
}

// Len is the number of addresses.
func (p Primes) Len() int {
	return len(p.values)
}

// Values returns a copy of the addresses.
func (p Primes) Values() []int {
	return append([]int(nil), p.values...)
}
