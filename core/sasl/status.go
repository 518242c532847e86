package sasl

import (
	"fmt"
	"strings"
)

// NegotiationStatus is the first byte of every negotiation frame.
type NegotiationStatus byte

const (
	StatusStart    NegotiationStatus = 0x01 // StatusStart opens the negotiation and names the mechanism.
	StatusOK       NegotiationStatus = 0x02 // StatusOK carries a challenge or a response.
	StatusBad      NegotiationStatus = 0x03 // StatusBad means the peer sent something invalid.
	StatusError    NegotiationStatus = 0x04 // StatusError means negotiation failed on the sender side.
	StatusComplete NegotiationStatus = 0x05 // StatusComplete ends a successful negotiation.
)

// Valid reports whether s is a status defined by the protocol.
func (s NegotiationStatus) Valid() bool {
	return s >= StatusStart && s <= StatusComplete
}

func (s NegotiationStatus) String() string {
	switch s {
	case StatusStart:
		return "START"
	case StatusOK:
		return "OK"
	case StatusBad:
		return "BAD"
	case StatusError:
		return "ERROR"
	case StatusComplete:
		return "COMPLETE"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02x)", byte(s))
	}
}

// ParseStatus parses the name of a status as printed by String, ignoring case.
func ParseStatus(name string) (NegotiationStatus, error) {
	for s := StatusStart; s <= StatusComplete; s++ {
		if strings.EqualFold(s.String(), name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("saslframe: unknown negotiation status %q", name)
}
