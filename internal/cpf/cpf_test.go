package cpf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "11 digits", in: "52998224725", want: true},
		{name: "11 digits second", in: "22488012033", want: true},
		{name: "11 digits third", in: "71838787089", want: true},
		{name: "11 digits trailing zeros", in: "70042234000", want: true},
		{name: "10 digits padded", in: "2673718605", want: true},
		{name: "9 digits padded", in: "770338410", want: true},
		{name: "9 digits padded second", in: "700422340", want: true},
		{name: "empty", in: "", want: false},
		{name: "too short", in: "12", want: false},
		{name: "7 digits", in: "7703384", want: false},
		{name: "13 digits", in: "9755404260035", want: false},
		{name: "letters", in: "abc", want: false},
		{name: "trailing letter", in: "1234567890a", want: false},
		{name: "punctuated", in: "529.982.247-25", want: false},
		{name: "wrong check digits", in: "12345678900", want: false},
		{name: "9 digits bad padding", in: "123456789", want: false},
		{name: "last digit off by one", in: "52998224726", want: false},
		{name: "leading space", in: " 52998224725", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.in))
		})
	}
}

func TestValid_SingleDigitMutations(t *testing.T) {
	for _, base := range []string{"52998224725", "22488012033", "71838787089"} {
		for i := 0; i < len(base); i++ {
			for c := byte('0'); c <= '9'; c++ {
				if c == base[i] {
					continue
				}
				mutated := []byte(base)
				mutated[i] = c
				assert.False(t, Valid(string(mutated)), "mutation %s of %s accepted", mutated, base)
			}
		}
	}
}

func TestValid_Deterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.True(t, Valid("88293388005"))
		assert.False(t, Valid("88293388006"))
	}
}
