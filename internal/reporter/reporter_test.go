package reporter

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/richinsley/pylocate/internal/core"
)

func TestCacheReportsAliasAndTargetOnce(t *testing.T) {
	collect := NewCollect()
	c := NewCache(collect)

	target := core.NewBuilder(core.KindHomebrew).
		Executable("/opt/homebrew/Cellar/python@3.12/3.12.4/bin/python3.12").
		Symlinks("/opt/homebrew/bin/python3").
		Build()
	alias := core.NewBuilder(core.KindGlobalPaths).
		Executable("/opt/homebrew/bin/python3").
		Build()

	c.ReportEnvironment(target)
	c.ReportEnvironment(alias)
	c.ReportEnvironment(target)

	result := collect.Result()
	require.Len(t, result.Environments, 1)
	env := result.Environments[0]
	assert.Equal(t, core.KindHomebrew, env.Kind)
	assert.Contains(t, env.Symlinks, "/opt/homebrew/bin/python3")
	assert.Contains(t, env.Symlinks, "/opt/homebrew/Cellar/python@3.12/3.12.4/bin/python3.12")

	assert.True(t, c.WasReported("/opt/homebrew/bin/python3"))
	assert.False(t, c.WasReported("/usr/bin/python3"))
}

func TestCacheDeduplicatesManagers(t *testing.T) {
	collect := NewCollect()
	c := NewCache(collect)
	m := &core.EnvManager{Tool: core.ToolConda, Executable: "/opt/conda/bin/conda", Version: "23.1.0"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.ReportManager(m)
		}()
	}
	wg.Wait()
	assert.Len(t, collect.Result().Managers, 1)
}

func TestCacheDropsEnvironmentWithoutKey(t *testing.T) {
	collect := NewCollect()
	NewCache(collect).ReportEnvironment(&core.PythonEnvironment{Kind: core.KindVenv})
	assert.Empty(t, collect.Result().Environments)
}

func TestCacheCondaWithoutPython(t *testing.T) {
	collect := NewCollect()
	c := NewCache(collect)
	env := core.NewBuilder(core.KindConda).Prefix("/opt/conda/envs/empty").Name("empty").Build()
	c.ReportEnvironment(env)
	c.ReportEnvironment(env)
	assert.Len(t, collect.Result().Environments, 1)
}

func TestKindFilter(t *testing.T) {
	collect := NewCollect()
	f := NewKindFilter(core.KindConda, collect)
	m := &core.EnvManager{Tool: core.ToolConda, Executable: "/opt/conda/bin/conda"}

	f.ReportEnvironment(core.NewBuilder(core.KindConda).Executable("/opt/conda/bin/python").Manager(m).Build())
	f.ReportEnvironment(core.NewBuilder(core.KindConda).Executable("/opt/conda/envs/a/bin/python").Manager(m).Build())
	f.ReportEnvironment(core.NewBuilder(core.KindVenv).Executable("/w/.venv/bin/python").Build())

	result := collect.Result()
	assert.Len(t, result.Environments, 2)
	assert.Len(t, result.Managers, 1)
}

// readFrame decodes the next length-prefixed msgpack frame of r into v.
func readFrame(t *testing.T, r io.Reader, v any) {
	t.Helper()
	var length uint32
	require.NoError(t, binary.Read(r, binary.BigEndian, &length))
	payload := make([]byte, length)
	_, err := io.ReadFull(r, payload)
	require.NoError(t, err)
	require.NoError(t, msgpack.NewDecoder(bytes.NewReader(payload)).Decode(v))
}

func TestStreamFrames(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(MsgpackSerializer{}, NewFramedTransport(&buf))
	s.ReportManager(&core.EnvManager{Tool: core.ToolPoetry, Executable: "/usr/bin/poetry", Version: "1.8.3"})
	s.ReportEnvironment(core.NewBuilder(core.KindPoetry).Executable("/cache/virtualenvs/demo-abc-py3.12/bin/python").Build())

	var n struct {
		Method string          `msgpack:"method"`
		Params core.EnvManager `msgpack:"params"`
	}
	readFrame(t, &buf, &n)
	assert.Equal(t, "manager", n.Method)
	assert.Equal(t, "1.8.3", n.Params.Version)

	var e struct {
		Method string                 `msgpack:"method"`
		Params core.PythonEnvironment `msgpack:"params"`
	}
	readFrame(t, &buf, &e)
	assert.Equal(t, "environment", e.Method)
	assert.Equal(t, core.KindPoetry, e.Params.Kind)
	assert.Zero(t, buf.Len())
}

func TestFramedTransportLargeMessage(t *testing.T) {
	var buf bytes.Buffer
	out := NewFramedTransport(&buf)
	payload := bytes.Repeat([]byte("x"), 20000)
	require.NoError(t, out.Send(payload))
	require.NoError(t, out.Send([]byte("tail")))

	var length uint32
	require.NoError(t, binary.Read(&buf, binary.BigEndian, &length))
	assert.Equal(t, uint32(len(payload)), length)
	assert.Equal(t, payload, buf.Next(int(length)))
	require.NoError(t, binary.Read(&buf, binary.BigEndian, &length))
	assert.Equal(t, "tail", string(buf.Next(int(length))))
}

func TestTextReporter(t *testing.T) {
	var buf bytes.Buffer
	txt := NewText(&buf)
	txt.ReportEnvironment(core.NewBuilder(core.KindVenv).Executable("/w/.venv/bin/python").Version("3.12.1").Build())
	assert.Contains(t, buf.String(), "Environment (Venv)")
	assert.Contains(t, buf.String(), "3.12.1")
}

func TestJSONLinesStream(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(JSONSerializer{}, NewLineTransport(&buf))
	s.ReportEnvironment(core.NewBuilder(core.KindVenv).Executable("/w/.venv/bin/python").Build())
	s.ReportTelemetry(core.MissingPoetryEnvironments{Missing: 2})

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	var e struct {
		Method string                 `json:"method"`
		Params core.PythonEnvironment `json:"params"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &e))
	assert.Equal(t, "environment", e.Method)
	assert.Equal(t, "/w/.venv/bin/python", e.Params.Executable)

	assert.Contains(t, lines[1], `"event":"MissingPoetryEnvironments"`)
	assert.Contains(t, lines[1], `"missing":2`)
}

func TestTee(t *testing.T) {
	a, b := NewCollect(), NewCollect()
	tee := Tee{a, b}
	tee.ReportManager(&core.EnvManager{Tool: core.ToolConda, Executable: "/opt/conda/bin/conda"})
	tee.ReportEnvironment(core.NewBuilder(core.KindConda).Prefix("/opt/conda").Build())
	tee.ReportTelemetry(core.RefreshPerformance{})

	for _, c := range []*Collect{a, b} {
		assert.Len(t, c.Result().Managers, 1)
		assert.Len(t, c.Result().Environments, 1)
		assert.Len(t, c.Telemetry(), 1)
	}
}

func TestFramePoolDropsGrownFrames(t *testing.T) {
	p := newFramePool(16, 1)
	small := append(p.get(), "abc"...)
	p.put(small)
	assert.Empty(t, p.get(), "reused frames come back empty")

	big := append(p.get(), bytes.Repeat([]byte("x"), 64)...)
	p.put(big)
	assert.Equal(t, 16, cap(p.get()))
}
