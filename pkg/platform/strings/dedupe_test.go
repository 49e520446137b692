package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "nil", in: nil, want: nil},
		{name: "only blanks", in: []string{"", "  "}, want: nil},
		{name: "order kept", in: []string{" b", "a ", "b"}, want: []string{"b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.in))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, SplitList("10.0.0.0/8, ,127.0.0.1,10.0.0.0/8"))
	assert.Nil(t, SplitList(""))
}
