package forward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portbridge/portbridge/pkg/errors"
)

func TestParse_FieldCounts(t *testing.T) {
	defaults := Defaults{BindHost: "*", TargetHost: "127.0.0.1"}

	testCases := []struct {
		name  string
		token string
		want  Spec
	}{
		{
			name:  "single port",
			token: "80",
			want:  Spec{Direction: Local, BindHost: "*", BindPort: 80, TargetHost: "127.0.0.1", TargetPort: 80},
		},
		{
			name:  "host and port",
			token: "10.0.0.42:80",
			want:  Spec{Direction: Local, BindHost: "*", BindPort: 80, TargetHost: "10.0.0.42", TargetPort: 80},
		},
		{
			name:  "bind port, host and port",
			token: "8080:10.0.0.42:80",
			want:  Spec{Direction: Local, BindHost: "*", BindPort: 8080, TargetHost: "10.0.0.42", TargetPort: 80},
		},
		{
			name:  "fully spelled out",
			token: "192.168.1.1:8080:10.0.0.42:80",
			want:  Spec{Direction: Local, BindHost: "192.168.1.1", BindPort: 8080, TargetHost: "10.0.0.42", TargetPort: 80},
		},
		{
			name:  "blank bind port and target host",
			token: "192.168.1.1:::80",
			want:  Spec{Direction: Local, BindHost: "192.168.1.1", BindPort: 80, TargetHost: "127.0.0.1", TargetPort: 80},
		},
		{
			name:  "blank target host in pair",
			token: ":80",
			want:  Spec{Direction: Local, BindHost: "*", BindPort: 80, TargetHost: "127.0.0.1", TargetPort: 80},
		},
		{
			name:  "blank bind port falls back to target port",
			token: ":10.0.0.42:80",
			want:  Spec{Direction: Local, BindHost: "*", BindPort: 80, TargetHost: "10.0.0.42", TargetPort: 80},
		},
		{
			name:  "blank target host in triple",
			token: "8080::80",
			want:  Spec{Direction: Local, BindHost: "*", BindPort: 8080, TargetHost: "127.0.0.1", TargetPort: 80},
		},
		{
			name:  "blank bind host in quad",
			token: ":8080:10.0.0.42:80",
			want:  Spec{Direction: Local, BindHost: "*", BindPort: 8080, TargetHost: "10.0.0.42", TargetPort: 80},
		},
		{
			name:  "all blanks except target port",
			token: ":::80",
			want:  Spec{Direction: Local, BindHost: "*", BindPort: 80, TargetHost: "127.0.0.1", TargetPort: 80},
		},
		{
			name:  "port zero is valid",
			token: "0",
			want:  Spec{Direction: Local, BindHost: "*", BindPort: 0, TargetHost: "127.0.0.1", TargetPort: 0},
		},
		{
			name:  "upper port bound",
			token: "65535",
			want:  Spec{Direction: Local, BindHost: "*", BindPort: 65535, TargetHost: "127.0.0.1", TargetPort: 65535},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			spec, err := Parse(tc.token, Local, defaults)
			require.NoError(t, err)
			assert.Equal(t, tc.want, spec)
		})
	}
}

func TestParse_RemoteDefaults(t *testing.T) {
	defaults := Defaults{BindHost: "127.0.0.1", TargetHost: "127.0.0.1"}

	spec, err := Parse("80", Remote, defaults)
	require.NoError(t, err)
	assert.Equal(t, Spec{
		Direction:  Remote,
		BindHost:   "127.0.0.1",
		BindPort:   80,
		TargetHost: "127.0.0.1",
		TargetPort: 80,
	}, spec)
}

func TestParse_FifthColonFoldsIntoFourthField(t *testing.T) {
	defaults := Defaults{BindHost: "*", TargetHost: "127.0.0.1"}

	// "80:extra" becomes the target port field and fails as a port.
	_, err := Parse("a:8080:b:80:extra", Local, defaults)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"80:extra"`)
	assert.Contains(t, err.Error(), "a:8080:b:80:extra")
}

func TestParse_InvalidPorts(t *testing.T) {
	defaults := Defaults{BindHost: "*", TargetHost: "127.0.0.1"}

	testCases := []struct {
		name      string
		token     string
		offending string
	}{
		{name: "non-numeric single field", token: "http", offending: `"http"`},
		{name: "empty token", token: "", offending: `""`},
		{name: "port too large", token: "65536", offending: `"65536"`},
		{name: "negative port", token: "-1", offending: `"-1"`},
		{name: "non-numeric bind port", token: "x:10.0.0.42:80", offending: `"x"`},
		{name: "non-numeric target port in pair", token: "10.0.0.42:https", offending: `"https"`},
		{name: "target port too large in quad", token: "h1:80:h2:99999", offending: `"99999"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.token, Local, defaults)
			require.Error(t, err)

			var bridgeErr *errors.BridgeError
			require.True(t, errors.As(err, &bridgeErr))
			assert.Equal(t, errors.CategoryParse, bridgeErr.Category)
			assert.Equal(t, errors.CodeInvalidPort, bridgeErr.Code)

			// The message names both the offending field and the full token.
			assert.Contains(t, err.Error(), tc.offending)
			assert.Contains(t, err.Error(), tc.token)
		})
	}
}

func TestParse_BlankBindPortUsesResolvedTargetPort(t *testing.T) {
	defaults := Defaults{BindHost: "*", TargetHost: "127.0.0.1"}

	// When the bind port is blank, the target port sub-string is substituted
	// before parsing, so an invalid target port is reported once, as itself.
	_, err := Parse(":10.0.0.42:bad", Local, defaults)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bad"`)
}
