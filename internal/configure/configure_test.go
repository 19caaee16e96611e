package configure

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgraph/bsi/internal/value"
)

type recordingRunner struct {
	stdout   string
	exitCode int
	err      error
	gotArgs  []string
	gotCwd   string
}

func (r *recordingRunner) Run(args []string, cwd string) (string, int, error) {
	r.gotArgs = args
	r.gotCwd = cwd
	return r.stdout, r.exitCode, r.err
}

func TestConfigure_ConfigurationModeWithTemplate(t *testing.T) {
	dir := t.TempDir()
	data := NewData()
	require.NoError(t, data.Set("VERSION", value.NewStr("1.2.0"), ""))

	var warned []string
	reg := NewRegistry(func(m string) { warned = append(warned, m) }, &recordingRunner{})

	out := filepath.Join(dir, "config.h")
	_, err := reg.Configure(Request{
		Mode:       ModeConfiguration,
		OutputPath: out,
		InputPath:  "config.h.in",
		InputText:  "#define VERSION \"@VERSION@\"\n",
		Data:       data,
		CallSite:   "meson.build:1",
	})
	require.NoError(t, err)

	contents, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "#define VERSION \"1.2.0\"\n", string(contents))
	assert.True(t, data.Frozen())
	assert.Empty(t, warned)
}

func TestConfigure_ConfigurationModeWarnsOnMissingVariable(t *testing.T) {
	dir := t.TempDir()
	data := NewData()
	var warned []string
	reg := NewRegistry(func(m string) { warned = append(warned, m) }, &recordingRunner{})

	_, err := reg.Configure(Request{
		Mode:       ModeConfiguration,
		OutputPath: filepath.Join(dir, "out.h"),
		InputPath:  "in.h",
		InputText:  "@MISSING@\n",
		Data:       data,
	})
	require.NoError(t, err)
	require.Len(t, warned, 1)
}

func TestConfigure_SynthesizesHeaderWithoutTemplate(t *testing.T) {
	dir := t.TempDir()
	data := NewData()
	require.NoError(t, data.Set("FOO", value.NewStr("bar"), ""))
	reg := NewRegistry(func(string) {}, &recordingRunner{})

	out := filepath.Join(dir, "config.h")
	_, err := reg.Configure(Request{Mode: ModeConfiguration, OutputPath: out, Data: data, HeaderFormat: FormatC})
	require.NoError(t, err)

	contents, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(contents), `#define FOO "bar"`)
}

func TestConfigure_SetOnFrozenDataFails(t *testing.T) {
	data := NewData()
	data.Freeze()
	err := data.Set("X", value.Int(1), "")
	require.Error(t, err)
}

func TestConfigure_DuplicateOutputWarns(t *testing.T) {
	dir := t.TempDir()
	var warned []string
	reg := NewRegistry(func(m string) { warned = append(warned, m) }, &recordingRunner{})
	out := filepath.Join(dir, "out.h")
	data1 := NewData()
	data2 := NewData()

	_, err := reg.Configure(Request{Mode: ModeConfiguration, OutputPath: out, Data: data1, CallSite: "a:1"})
	require.NoError(t, err)
	_, err = reg.Configure(Request{Mode: ModeConfiguration, OutputPath: out, Data: data2, CallSite: "b:2"})
	require.NoError(t, err)

	require.Len(t, warned, 1)
	assert.Contains(t, warned[0], "a:1")
}

func TestConfigure_CommandModeNonZeroExitFails(t *testing.T) {
	reg := NewRegistry(func(string) {}, &recordingRunner{exitCode: 1})
	_, err := reg.Configure(Request{Mode: ModeCommand, OutputPath: "/tmp/whatever", Command: []string{"false"}})
	require.Error(t, err)
}

func TestConfigure_CommandModeCapturesStdout(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "captured.txt")
	reg := NewRegistry(func(string) {}, &recordingRunner{stdout: "hello\n"})
	_, err := reg.Configure(Request{Mode: ModeCommand, OutputPath: out, Command: []string{"echo", "hello"}, Capture: true})
	require.NoError(t, err)

	contents, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(contents))
}

func TestConfigure_ConfigurationModeRequiresData(t *testing.T) {
	reg := NewRegistry(func(string) {}, &recordingRunner{})
	_, err := reg.Configure(Request{Mode: ModeConfiguration, OutputPath: "/tmp/out", Data: nil})
	require.Error(t, err)
}

func TestDataKeysPreserveInsertionOrder(t *testing.T) {
	d := NewData()
	require.NoError(t, d.Set("b", value.Int(2), ""))
	require.NoError(t, d.Set("a", value.Int(1), ""))
	assert.Equal(t, []string{"b", "a"}, d.Keys())
}
