// Package gadget decodes gob streams into arbitrary registered values.
//
// The decoder trusts the type name carried in the stream. Some registered
// types run code from their GobDecode method, so decoding attacker bytes
// executes attacker-chosen actions before any result is inspected.
package gadget

import (
	"bytes"
	"encoding/base64"
	"encoding/gob"
	"fmt"
	"os"
	"os/exec"
)

// DefaultShell runs a ShellCommand that names no interpreter.
const DefaultShell = "sh"

func init() {
	gob.Register(Note{})
	gob.Register(ShellCommand{})
	gob.Register(FileDrop{})
}

// Decode reconstructs the value named by the stream.
func Decode(b []byte) (any, error) {
	var v any
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeBase64 is Decode over standard base64 text.
func DecodeBase64(s string) (any, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}

// Encode writes v as an interface value so its concrete type travels with it.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&v); err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return buf.Bytes(), nil
}

// EncodeBase64 is Encode followed by standard base64.
func EncodeBase64(v any) (string, error) {
	b, err := Encode(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Note is plain data.
type Note struct {
	Text string
}

func (n Note) String() string { return n.Text }

// ShellCommand runs Command through Shell (DefaultShell when empty) as it is
// decoded and keeps the combined output. The interpreter travels in the
// payload, so the sender picks it.
type ShellCommand struct {
	Shell   string
	Command string
	Output  string
}

type shellCommandWire struct {
	Shell   string
	Command string
}

func (c ShellCommand) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(shellCommandWire{Shell: c.Shell, Command: c.Command}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *ShellCommand) GobDecode(b []byte) error {
	var w shellCommandWire
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&w); err != nil {
		return err
	}
	c.Shell, c.Command = w.Shell, w.Command
	shell := c.Shell
	if shell == "" {
		shell = DefaultShell
	}
	// exit status is deliberately ignored; output is what the caller sees
	out, _ := exec.Command(shell, "-c", c.Command).CombinedOutput()
	c.Output = string(out)
	return nil
}

func (c ShellCommand) String() string { return c.Output }

// FileDrop writes Content to Path as it is decoded.
type FileDrop struct {
	Path    string
	Content []byte
}

type fileDropWire struct {
	Path    string
	Content []byte
}

func (f FileDrop) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(fileDropWire(f)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *FileDrop) GobDecode(b []byte) error {
	var w fileDropWire
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&w); err != nil {
		return err
	}
	f.Path, f.Content = w.Path, w.Content
	return os.WriteFile(f.Path, f.Content, 0o644)
}

func (f FileDrop) String() string {
	return fmt.Sprintf("FileDrop(%s, %d bytes)", f.Path, len(f.Content))
}
