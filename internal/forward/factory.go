package forward

import (
	"fmt"

	"github.com/portbridge/portbridge/pkg/errors"
)

// Direction-dependent defaults. Local forwards bind every interface and
// target the remote loopback; remote forwards bind the remote loopback and
// target the local loopback.
var (
	localDefaults  = Defaults{BindHost: WildcardHost, TargetHost: "127.0.0.1"}
	remoteDefaults = Defaults{BindHost: "127.0.0.1", TargetHost: "127.0.0.1"}
)

// BuildLocal resolves local-forward tokens into specs, in token order.
// The first malformed token aborts the whole batch: no partial list is
// returned.
func BuildLocal(tokens []string) ([]Spec, error) {
	return build(tokens, Local, localDefaults)
}

// BuildRemote resolves remote-forward tokens into specs, in token order,
// with the same fail-fast contract as BuildLocal.
func BuildRemote(tokens []string) ([]Spec, error) {
	return build(tokens, Remote, remoteDefaults)
}

func build(tokens []string, direction Direction, defaults Defaults) ([]Spec, error) {
	specs := make([]Spec, 0, len(tokens))
	for i, token := range tokens {
		spec, err := Parse(token, direction, defaults)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%s forward %d of %d", direction, i+1, len(tokens)))
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
