package forward

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/portbridge/portbridge/pkg/errors"
)

// maxFields caps the split: a fifth colon folds into the fourth field.
const maxFields = 4

// Defaults supplies the hosts substituted for fields the token leaves blank
// or omits. The parser itself is direction-agnostic; the factory picks the
// defaults per direction.
type Defaults struct {
	BindHost   string
	TargetHost string
}

// Parse resolves one forwarding token into a Spec.
//
// The token is split on ":" into at most four fields and interpreted by
// field count:
//
//	p             bind defaults, both ports p
//	h:p           target host h, both ports p
//	p1:h:p2       bind port p1, target h:p2 (p1 blank falls back to p2)
//	h1:p1:h2:p2   fully spelled out, blanks fall back per field
//
// The 3-field fallback of a blank bind port to the target port is intended:
// it covers binding the same port on a named interface, as in ":host:80".
// Every error message contains the original token verbatim.
func Parse(token string, direction Direction, defaults Defaults) (Spec, error) {
	fields := strings.SplitN(token, ":", maxFields)

	var bindHost, bindPort, targetHost, targetPort string

	switch len(fields) {
	case 1:
		bindHost = defaults.BindHost
		bindPort = fields[0]
		targetHost = defaults.TargetHost
		targetPort = fields[0]
	case 2:
		bindHost = defaults.BindHost
		bindPort = fields[1]
		targetHost = fields[0]
		targetPort = fields[1]
	case 3:
		bindHost = defaults.BindHost
		bindPort = fields[0]
		targetHost = fields[1]
		targetPort = fields[2]
		if bindPort == "" {
			bindPort = targetPort
		}
	case 4:
		bindHost = fields[0]
		bindPort = fields[1]
		targetHost = fields[2]
		targetPort = fields[3]
		if bindPort == "" {
			bindPort = targetPort
		}
	default:
		return Spec{}, errors.NewParseError(errors.CodeBadFieldCount,
			fmt.Sprintf("field count out of range in forwarding rule %q", token))
	}

	if bindHost == "" {
		bindHost = defaults.BindHost
	}
	if targetHost == "" {
		targetHost = defaults.TargetHost
	}

	bp, err := parsePort(token, bindPort)
	if err != nil {
		return Spec{}, err
	}
	tp, err := parsePort(token, targetPort)
	if err != nil {
		return Spec{}, err
	}

	return Spec{
		Direction:  direction,
		BindHost:   bindHost,
		BindPort:   bp,
		TargetHost: targetHost,
		TargetPort: tp,
	}, nil
}

// parsePort validates a resolved port field as a non-negative integer that
// fits in 16 bits. The error names the offending sub-string and the token.
func parsePort(token, field string) (int, error) {
	port, err := strconv.Atoi(field)
	if err != nil || port < 0 || port > 65535 {
		return 0, errors.NewParseError(errors.CodeInvalidPort,
			fmt.Sprintf("invalid port %q in forwarding rule %q", field, token))
	}
	return port, nil
}
