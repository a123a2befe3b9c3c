package filestore

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"
)

// journal is an append-only file of JSON-encoded entries, fsync'd on every
// append. Replaying it from the start reproduces the exact sequence of state
// changes, which is what crash recovery relies on.
type journal struct {
	mu   sync.Mutex
	file *os.File
}

func openJournal(path string) (*journal, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	return &journal{file: file}, nil
}

// Append encodes one entry and forces it to disk before returning. An error
// means the entry may not be durable and the caller must not apply the
// corresponding state change.
func (j *journal) Append(v any) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := json.NewEncoder(j.file).Encode(v); err != nil {
		return err
	}
	return j.file.Sync()
}

// Replay reads every entry from the start of the file and hands it to fn.
func (j *journal) Replay(fn func(raw json.RawMessage) error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	decoder := json.NewDecoder(j.file)
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := fn(raw); err != nil {
			return err
		}
	}
}

func (j *journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}
