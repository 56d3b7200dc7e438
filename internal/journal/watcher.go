package journal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/bgol/updatetd/internal/tradedb"
)

// Watcher tails the journal directory. It follows the newest journal file
// from its current end, rotates to freshly created journal files, and
// dispatches every appended line to the core.
type Watcher struct {
	dispatcher

	fsw     *fsnotify.Watcher
	file    *os.File
	reader  *bufio.Reader
	path    string
	partial string

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a Watcher for the given journal directory.
func New(log *zap.Logger, tdb *tradedb.TradeDB, dir string) (*Watcher, error) {
	if dir == "" {
		return nil, fmt.Errorf("journal directory not configured")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("journal directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("journal directory %s is not a directory", dir)
	}
	return &Watcher{
		dispatcher: dispatcher{log: log, tdb: tdb, dir: dir},
		stopCh:     make(chan struct{}),
	}, nil
}

// Start begins watching. The newest existing journal file is followed from
// its end; history is not replayed.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.fsw = fsw

	if latest := w.latestJournal(); latest != "" {
		if err := w.openJournal(latest, true); err != nil {
			w.log.Warn("journal open failed", zap.String("path", latest), zap.Error(err))
		}
	}

	w.wg.Add(1)
	go w.run()
	w.log.Info("watching journal directory", zap.String("dir", w.dir))
	return nil
}

// Stop halts the watcher and closes the tailed file.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	w.wg.Wait()

	err := w.fsw.Close()
	if w.file != nil {
		w.file.Close()
		w.file = nil
	}
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFsEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("journal watch error", zap.Error(err))
		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) handleFsEvent(ev fsnotify.Event) {
	name := filepath.Base(ev.Name)

	switch {
	case isJournalFile(name) && ev.Op.Has(fsnotify.Create):
		// The game started a new journal file, follow it from the start.
		if err := w.openJournal(ev.Name, false); err != nil {
			w.log.Warn("journal rotate failed", zap.String("path", ev.Name), zap.Error(err))
			return
		}
		w.readPending()

	case ev.Name == w.path && ev.Op.Has(fsnotify.Write):
		w.readPending()
	}
}

// readPending consumes all complete lines appended since the last read. A
// trailing partial line is kept until the rest arrives.
func (w *Watcher) readPending() {
	if w.reader == nil {
		return
	}
	for {
		chunk, err := w.reader.ReadString('\n')
		if err == io.EOF {
			w.partial += chunk
			return
		}
		if err != nil {
			w.log.Warn("journal read failed", zap.String("path", w.path), zap.Error(err))
			return
		}

		line := strings.TrimSpace(w.partial + chunk)
		w.partial = ""
		if line == "" {
			continue
		}
		if err := w.processLine([]byte(line)); err != nil {
			// Store-level failure: log and drop the event.
			w.log.Error("event dropped", zap.Error(err))
		}
	}
}

// openJournal switches the tail to a journal file, optionally starting at
// its current end.
func (w *Watcher) openJournal(path string, seekEnd bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	if seekEnd {
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			f.Close()
			return err
		}
	}

	if w.file != nil {
		w.file.Close()
	}
	w.file = f
	w.reader = bufio.NewReader(f)
	w.path = path
	w.partial = ""
	w.log.Info("following journal file", zap.String("path", path))
	return nil
}

// latestJournal returns the most recently modified journal file in the
// directory, or "" when none exists.
func (w *Watcher) latestJournal() string {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return ""
	}

	var latest string
	var latestMod int64
	for _, entry := range entries {
		if entry.IsDir() || !isJournalFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); latest == "" || mod > latestMod {
			latest = filepath.Join(w.dir, entry.Name())
			latestMod = mod
		}
	}
	return latest
}

func isJournalFile(name string) bool {
	return strings.HasPrefix(name, "Journal") && strings.HasSuffix(name, ".log")
}

// Replay feeds an existing journal file through the core from start to end.
// Snapshot signals read their documents from the file's directory.
func Replay(log *zap.Logger, tdb *tradedb.TradeDB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	d := &dispatcher{log: log, tdb: tdb, dir: filepath.Dir(path)}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := d.processLine([]byte(line)); err != nil {
			log.Error("event dropped", zap.Error(err))
		}
	}
	return scanner.Err()
}
