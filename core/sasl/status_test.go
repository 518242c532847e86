package sasl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNegotiationStatus(t *testing.T) {
	tests := []struct {
		status NegotiationStatus
		name   string
		valid  bool
	}{
		{StatusStart, "START", true},
		{StatusOK, "OK", true},
		{StatusBad, "BAD", true},
		{StatusError, "ERROR", true},
		{StatusComplete, "COMPLETE", true},
		{0x00, "UNKNOWN(0x00)", false},
		{0x06, "UNKNOWN(0x06)", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.name, tt.status.String())
		assert.Equal(t, tt.valid, tt.status.Valid())
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("complete")
	assert.NoError(t, err)
	assert.Equal(t, StatusComplete, s)

	s, err = ParseStatus("OK")
	assert.NoError(t, err)
	assert.Equal(t, StatusOK, s)

	_, err = ParseStatus("DONE")
	assert.EqualError(t, err, `saslframe: unknown negotiation status "DONE"`)
}
