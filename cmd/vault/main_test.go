package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugawarayuuta/sonnet"
	"go.uber.org/zap"

	"github.com/Hakuto4838/skipvault/config"
	"github.com/Hakuto4838/skipvault/vault"
)

const script = `# users
adduser bob pw1
adduser alice pw2
adduser bob again
auth bob pw1
auth bob wrong
addapp bob pw1 mail m1
authapp bob mail m1
resetapp bob mail m1 m2
authapp bob mail m1
stats bob
users
deluser alice pw2
frobnicate x
auth bob
`

func newManager(t *testing.T) *vault.Manager {
	m, err := vault.NewManager(config.Default().Store, zap.NewNop())
	require.NoError(t, err)
	return m
}

func TestRunScript(t *testing.T) {
	m := newManager(t)
	results, err := runScript(m, strings.NewReader(script))
	require.NoError(t, err)
	require.Len(t, results, 14)

	ok := make([]bool, len(results))
	for i, r := range results {
		ok[i] = r.OK
	}
	assert.Equal(t, []bool{
		true, true, false, true, false, true, true, true, false, true, true, true, false, false,
	}, ok)

	assert.Equal(t, 2, results[0].Line)
	assert.Equal(t, "bob", results[0].Target)
	assert.Contains(t, results[2].Message, "user already exists")
	assert.Contains(t, results[4].Message, "failed to authenticate")
	assert.Contains(t, results[8].Message, "failed to authenticate")
	assert.Contains(t, results[12].Message, "unknown command")
	assert.Contains(t, results[13].Message, "auth <user> <password>")

	users, isUsers := results[10].Data.([]vault.UserInfo)
	require.True(t, isUsers)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, 1, users[1].Apps)

	assert.Equal(t, []string{"bob"}, m.ListUsers())
}

func TestRunJSON(t *testing.T) {
	var out bytes.Buffer
	err := run(&options{json: true}, strings.NewReader("adduser bob pw\nauth bob nope\n"), &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	var r result
	require.NoError(t, sonnet.Unmarshal([]byte(lines[1]), &r))
	assert.Equal(t, 2, r.Line)
	assert.Equal(t, "auth", r.Command)
	assert.False(t, r.OK)
}

func TestRunStrict(t *testing.T) {
	var out bytes.Buffer
	err := run(&options{strict: true}, strings.NewReader("auth nobody pw\n"), &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "FAIL")
}

func TestRootCommand(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "script.txt")
	require.NoError(t, os.WriteFile(scriptPath, []byte("adduser bob pw\naddapp bob pw mail m\nusers\nstats bob\n"), 0o644))
	cfgPath := filepath.Join(dir, "vault.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[log]\nlevel = \"error\"\n\n[store.apps]\ncapacity = 31\n"), 0o644))

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfgPath, "run", scriptPath})
	require.NoError(t, root.Execute())

	text := out.String()
	assert.Contains(t, text, "COMMAND")
	assert.Contains(t, text, "app password added")
	assert.Contains(t, text, "line 3: users")
	assert.Contains(t, text, `"capacity":31`)

	root = newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"run", filepath.Join(dir, "missing.txt")})
	require.Error(t, root.Execute())
}
