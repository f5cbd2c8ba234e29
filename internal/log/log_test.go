package log

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLog_DisabledUntilInit(t *testing.T) {
	require.NotPanics(t, func() { Info(CatCLI, "dropped") })
	require.Nil(t, Subscribe(context.Background()))
}

func TestLog_Format(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf)
	defer cleanup()

	Info(CatMarshal, "Rendered instance", "class", "Book", "id", 1)
	ErrorErr(CatDB, "Query failed", errors.New("boom"))
	Warn(CatMeta, "Odd fields", "dangling")

	out := buf.String()
	require.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2} \[INFO\] \[marshal\] Rendered instance class=Book id=1\n`, out)
	require.Contains(t, out, "[ERROR] [db] Query failed error=boom\n")
	require.Contains(t, out, "[WARN] [meta] Odd fields dangling=<missing>\n")
}

func TestLog_MinLevelAndEnabled(t *testing.T) {
	var buf bytes.Buffer
	cleanup := InitWriter(&buf)
	defer cleanup()

	SetMinLevel(LevelWarn)
	Debug(CatCache, "hidden")
	Info(CatCache, "hidden")
	Error(CatCache, "shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")

	buf.Reset()
	SetEnabled(false)
	Error(CatCache, "muted")
	require.Empty(t, buf.String())
}

func TestLog_Subscribe(t *testing.T) {
	cleanup := InitWriter(&bytes.Buffer{})
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := Subscribe(ctx)
	require.NotNil(t, ch)

	Debug(CatProxy, "Loaded proxy", "class", "Author")

	select {
	case event := <-ch:
		require.Contains(t, event.Payload, "[DEBUG] [proxy] Loaded proxy class=Author")
	case <-time.After(time.Second):
		require.Fail(t, "timeout waiting for log event")
	}
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelInfo, ParseLevel("info"))
	require.Equal(t, LevelWarn, ParseLevel("WARN"))
	require.Equal(t, LevelError, ParseLevel("error"))
	require.Equal(t, LevelDebug, ParseLevel("verbose"))
	require.Equal(t, "UNKNOWN", Level(9).String())
}
