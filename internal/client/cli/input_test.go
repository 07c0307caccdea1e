package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	require.ErrorIs(t, err, ErrAborted)
}

func stubTerminal(t *testing.T, terminal bool, pw []byte, err error) {
	t.Helper()
	origRead, origIs := readPassword, isTerminal
	isTerminal = func(int) bool { return terminal }
	readPassword = func(int) ([]byte, error) { return pw, err }
	t.Cleanup(func() { readPassword, isTerminal = origRead, origIs })
}

func TestGetPassword_Terminal(t *testing.T) {
	stubTerminal(t, true, []byte("secret"), nil)
	var out bytes.Buffer
	pw, err := GetPassword(rdr("ignored\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "secret", string(pw))
	assert.NotContains(t, out.String(), "secret")
}

func TestGetPassword_Error(t *testing.T) {
	stubTerminal(t, true, nil, errors.New("boom"))
	var out bytes.Buffer
	_, err := GetPassword(rdr(""), &out)
	require.Error(t, err)
}

func TestGetPassword_PipedInput(t *testing.T) {
	stubTerminal(t, false, nil, errors.New("must not be called"))
	var out bytes.Buffer
	pw, err := GetPassword(rdr("piped secret\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "piped secret", string(pw))
}

func TestGetPassword_PipedInputKeepsSurroundingSpaces(t *testing.T) {
	stubTerminal(t, false, nil, errors.New("must not be called"))
	var out bytes.Buffer
	pw, err := GetPassword(rdr("  pass phrase  \r\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "  pass phrase  ", string(pw))
}

func TestGetPassword_PipedEOF(t *testing.T) {
	stubTerminal(t, false, nil, errors.New("must not be called"))
	var out bytes.Buffer
	pw, err := GetPassword(rdr(" last "), &out)
	require.NoError(t, err)
	assert.Equal(t, " last ", string(pw))

	_, err = GetPassword(rdr(""), &out)
	require.ErrorIs(t, err, ErrAborted)
}

func TestGetVisiblePassword(t *testing.T) {
	var out bytes.Buffer
	pw, err := GetVisiblePassword(rdr(" secret with spaces \n"), &out)
	require.NoError(t, err)
	assert.Equal(t, " secret with spaces ", string(pw))
	assert.Equal(t, "Master password (visible)\n> ", out.String())
}

func TestGetYesNo(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{name: "empty picks default yes", input: "\n", def: true, want: true},
		{name: "empty picks default no", input: "\n", def: false, want: false},
		{name: "yes", input: "YES\n", want: true},
		{name: "n", input: "n\n", def: true, want: false},
		{name: "asks again", input: "maybe\ny\n", want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := GetYesNo(rdr(tc.input), "Save?", tc.def, &out)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetYesNo_EOF(t *testing.T) {
	var out bytes.Buffer
	_, err := GetYesNo(rdr(""), "Save?", true, &out)
	require.ErrorIs(t, err, ErrAborted)
}
