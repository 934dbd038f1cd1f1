package kerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEAndError(t *testing.T) {
	cause := errors.New("disk full")
	err := E(IO, "writing output", "/tmp/out.vcf", cause)
	assert.Equal(t, "writing output: /tmp/out.vcf: disk full", err.Error())
	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, Is(IO, err))
	assert.False(t, Is(DataFormat, err))
}

func TestKindExitCodes(t *testing.T) {
	tests := []struct {
		kind Kind
		code int
	}{
		{Usage, 1},
		{IO, 2},
		{Security, 3},
		{NotFound, 4},
		{DataFormat, 5},
		{AnalysisLimit, 8},
		{Interrupted, 7},
		{Internal, 98},
		{Other, 99},
	}
	for _, test := range tests {
		assert.Equal(t, test.code, test.kind.ExitCode(), test.kind.String())
	}
}

func TestErrorfKind(t *testing.T) {
	err := Errorf("bad k-mer length %d", 3)
	assert.Equal(t, "bad k-mer length 3", err.Error())
	assert.Equal(t, Other, KindOf(err))
}

func TestNestedKind(t *testing.T) {
	inner := E(DataFormat, "malformed BED record")
	outer := E(AnalysisLimit, "region discarded", inner)
	assert.True(t, Is(AnalysisLimit, outer))
	assert.True(t, Is(DataFormat, outer))
}
