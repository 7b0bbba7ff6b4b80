package logger

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

func TestInitLevel(t *testing.T) {
	saved := log.Default()
	t.Cleanup(func() { log.SetDefault(saved) })

	Init(false, true)
	require.Equal(t, log.WarnLevel, log.GetLevel())

	Init(true, true)
	require.Equal(t, log.DebugLevel, log.GetLevel())
}

func TestForRun(t *testing.T) {
	saved := log.Default()
	t.Cleanup(func() { log.SetDefault(saved) })

	var buf bytes.Buffer
	log.SetDefault(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))

	ForRun("Main.class").Info("started")
	ForRun("Main.class").Info("started")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	require.Contains(t, string(lines[0]), "file=Main.class")
	require.Contains(t, string(lines[0]), "run=")
	require.NotEqual(t, string(lines[0]), string(lines[1]), "each run gets its own id")
}
