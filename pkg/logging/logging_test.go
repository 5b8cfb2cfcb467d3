package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommonLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	c := NewConfig(`tests`)
	c.Writer = buf

	l, err := CommonLogger(c)
	require.NoError(t, err)

	l.Info("hello", slog.String(KeyGuild, "1"))

	got := make(map[string]any)
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "hello", got["msg"])
	require.Equal(t, "tests", got[KeyApp])
	require.Equal(t, "1", got[KeyGuild])
}

func TestCommonLogger_InvalidFormat(t *testing.T) {
	c := NewConfig(`tests`)
	c.Format = "xml"

	_, err := CommonLogger(c)
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "WARN", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "", want: slog.LevelInfo},
		{in: "nonsense", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}
