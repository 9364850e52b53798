package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func newTestLogger(t *testing.T) (Logger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), buf, zapcore.DebugLevel)
	return &zapLogger{z: zap.New(core)}, buf
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := NewLogger(LogConfig{Level: LevelInfo, Format: format, OutputPaths: []string{"stderr"}})
		require.NoError(t, err, format)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_DefaultsOutputPaths(t *testing.T) {
	l, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_UnopenablePath(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{"/nonexistent-dir/x/y.log"}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))

	assert.True(t, ValidLevel("Info"))
	assert.False(t, ValidLevel("trace"))
}

func TestZapLogger_FieldTypes(t *testing.T) {
	l, buf := newTestLogger(t)

	l.Info("fragment",
		String("smiles", "C1=CC=CC=C1"),
		Strings("tags", []string{"ring"}),
		Int("atoms", 6),
		Ints("cluster", []int{0, 1, 2}),
		Int64("big", 1<<40),
		Float64("ratio", 0.5),
		Bool("ok", true),
		Duration("took", time.Second),
		Err(errors.New("boom")),
		Any("extra", map[string]int{"a": 1}),
	)

	out := buf.String()
	assert.Contains(t, out, `"smiles":"C1=CC=CC=C1"`)
	assert.Contains(t, out, `"tags":["ring"]`)
	assert.Contains(t, out, `"atoms":6`)
	assert.Contains(t, out, `"cluster":[0,1,2]`)
	assert.Contains(t, out, `"ok":true`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoggerFromCore(core).Named("build").With(String("run_id", "r1"))

	l.Debug("d")
	l.Warn("w")
	l.Error("e", Err(nil))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "build", entries[0].LoggerName)
	assert.Equal(t, "r1", entries[1].ContextMap()["run_id"])
	assert.Equal(t, "<nil>", entries[2].ContextMap()["error"])
}

func TestNopLogger_AllMethodsNoOp(t *testing.T) {
	l := NewNopLogger()
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
	assert.NotNil(t, l.With(String("k", "v")))
	assert.NotNil(t, l.Named("x"))
}

func TestDefault_SetAndGet(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	core, logs := observer.New(zapcore.InfoLevel)
	SetDefault(NewLoggerFromCore(core))
	SetDefault(nil)

	Default().Info("hello")
	assert.Equal(t, 1, logs.Len())
}
