package notify

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// CommandWatcher watches the control directory and dispatches callbacks.
type CommandWatcher struct {
	dir      string
	callback func(commandType string)
	watcher  *fsnotify.Watcher
	done     chan struct{}
}

// NewCommandWatcher creates a watcher for {dataPath}/control/.
func NewCommandWatcher(dataPath string, callback func(commandType string)) *CommandWatcher {
	return &CommandWatcher{
		dir:      filepath.Join(dataPath, "control"),
		callback: callback,
		done:     make(chan struct{}),
	}
}

// Start begins watching. It drains any existing command files first,
// then watches for new ones. Call Stop() to clean up.
func (cw *CommandWatcher) Start() error {
	if err := os.MkdirAll(cw.dir, 0o700); err != nil {
		return err
	}

	cw.drainExisting()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(cw.dir); err != nil {
		_ = w.Close()
		return err
	}
	cw.watcher = w

	go cw.loop()
	log.Printf("notify: watching %s for control commands", cw.dir)
	return nil
}

// Stop shuts down the watcher.
func (cw *CommandWatcher) Stop() {
	if cw.watcher != nil {
		_ = cw.watcher.Close()
	}
	<-cw.done
}

func (cw *CommandWatcher) loop() {
	defer close(cw.done)
	for {
		select {
		case evt, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if evt.Op&fsnotify.Create != 0 && strings.HasSuffix(evt.Name, ".cmd") {
				cw.processFile(evt.Name)
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("notify: watcher error: %v", err)
		}
	}
}

func (cw *CommandWatcher) drainExisting() {
	entries, err := os.ReadDir(cw.dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".cmd") {
			cw.processFile(filepath.Join(cw.dir, entry.Name()))
		}
	}
}

func (cw *CommandWatcher) processFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return // file already consumed by another process
	}
	_ = os.Remove(path)

	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		log.Printf("notify: invalid command file %s: %v", filepath.Base(path), err)
		return
	}

	if cmd.Type != "" && cw.callback != nil {
		cw.callback(cmd.Type)
	}
}
