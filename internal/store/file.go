// Internal/store/file.go.
package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dkolesni-prog/recall/internal/app/middleware"
)

// Record is one line of the storage file. Later lines win over earlier ones.
type Record struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Storage keeps every key in memory and appends each write to a JSON-lines file.
type Storage struct {
	mu       *sync.Mutex
	data     map[string]string
	filePath string
}

func NewStorage(filePath string) *Storage {
	s := &Storage{
		mu:       &sync.Mutex{},
		data:     make(map[string]string),
		filePath: filePath,
	}
	if err := s.loadFromFile(); err != nil {
		middleware.Log.Error().Err(err).Str("path", filePath).Msg("Error loading data from file")
	}
	return s
}

// ----------------------------------------------.
// Satisfying store.Store interface.
// ----------------------------------------------.

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveRecord(key, value); err != nil {
		return err
	}
	s.data[key] = value
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	return nil
}

// Bootstrap makes sure the directory holding the file exists.
func (s *Storage) Bootstrap(ctx context.Context) error {
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		middleware.Log.Error().Err(err).Str("dir", dir).Msg("cannot create storage dir")
		return errors.New("create storage dir: " + err.Error())
	}
	return nil
}

// ----------------------------------------------.
// Helpers.
// ----------------------------------------------.

func (s *Storage) loadFromFile() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.New("open file: " + err.Error())
	}
	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			middleware.Log.Error().Err(err).Msg("error closing file")
		}
	}(file)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			middleware.Log.Warn().Err(err).Msgf("Skipping malformed line: %s", line)
			continue
		}
		s.data[rec.Key] = rec.Value
	}

	if scErr := scanner.Err(); scErr != nil {
		return errors.New("scanner error: " + scErr.Error())
	}
	return nil
}

// saveRecord appends a JSON record to the file. Callers hold s.mu.
func (s *Storage) saveRecord(key, value string) error {
	rec := Record{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		middleware.Log.Error().Err(err).Msg("failed to marshal record")
		return errors.New("marshal record: " + err.Error())
	}

	file, err := os.OpenFile(s.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		middleware.Log.Error().Err(err).Msg("open file error")
		return errors.New("open file: " + err.Error())
	}
	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			middleware.Log.Error().Err(err).Msg("close file error")
		}
	}(file)

	data = append(data, '\n')
	if _, err := file.Write(data); err != nil {
		middleware.Log.Error().Err(err).Msg("file write data")
		return errors.New("file write data: " + err.Error())
	}
	return nil
}
