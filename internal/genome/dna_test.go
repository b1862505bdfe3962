package genome

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseIndex(t *testing.T) {
	for i := 0; i < len(Bases); i++ {
		assert.Equal(t, i, BaseIndex(Bases[i]))
	}
	assert.Equal(t, -1, BaseIndex('N'))
	assert.Equal(t, -1, BaseIndex('a'))
}

func TestComplement(t *testing.T) {
	assert.Equal(t, byte('T'), Complement('A'))
	assert.Equal(t, byte('G'), Complement('C'))
	assert.Equal(t, byte('c'), Complement('g'))
	assert.Equal(t, byte('N'), Complement('N'))
}

func TestReverseComplement(t *testing.T) {
	assert.Equal(t, "", ReverseComplement(""))
	assert.Equal(t, "CAT", ReverseComplement("ATG"))
	assert.Equal(t, "ATGAAATAA", ReverseComplement("TTATTTCAT"))
}
