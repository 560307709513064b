// Package notify provides cross-process control notification between
// the focusd CLI and the running daemon using filesystem events.
package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Control command types.
const (
	CommandReload = "reload"
	CommandStart  = "start"
	CommandStop   = "stop"
)

// Command is the payload written to a control file.
type Command struct {
	Type string `json:"type"`
	Time int64  `json:"time"`
}

// CommandWriter writes control command files to a shared directory.
type CommandWriter struct {
	dir string
}

// NewCommandWriter creates a writer that emits commands to
// {dataPath}/control/.
func NewCommandWriter(dataPath string) *CommandWriter {
	return &CommandWriter{dir: filepath.Join(dataPath, "control")}
}

// Send writes a command file with the given type.
// Safe to call concurrently. Errors are returned but not fatal.
func (w *CommandWriter) Send(commandType string) error {
	if err := os.MkdirAll(w.dir, 0o700); err != nil {
		return fmt.Errorf("notify: mkdir %s: %w", w.dir, err)
	}
	cmd := Command{
		Type: commandType,
		Time: time.Now().UnixNano(),
	}
	data, _ := json.Marshal(cmd)
	filename := fmt.Sprintf("%d-%s.cmd", cmd.Time, commandType)
	return os.WriteFile(filepath.Join(w.dir, filename), data, 0o600)
}
