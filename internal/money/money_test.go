package money

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatGroupsThousands(t *testing.T) {
	out := Format(130000)
	assert.True(t, strings.HasSuffix(out, "1,300.00"), out)
	assert.True(t, strings.HasPrefix(out, Symbol()), out)
}

func TestFormatPaise(t *testing.T) {
	assert.True(t, strings.HasSuffix(Format(29905), "299.05"))
	assert.True(t, strings.HasSuffix(Format(7), "0.07"))
}

func TestFormatNegative(t *testing.T) {
	assert.True(t, strings.HasPrefix(Format(-500), "-"))
}

func TestFromRupees(t *testing.T) {
	assert.Equal(t, int64(29900), FromRupees(299))
}
