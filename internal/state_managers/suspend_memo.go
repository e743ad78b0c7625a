package state_managers

import (
	"os"
	"sync"

	"github.com/benmeehan/geo-alarm/internal/constants"
	"github.com/benmeehan/geo-alarm/pkg/file"
	"github.com/rs/zerolog"
)

// FileMemoStore persists the suspended watch flag in a small JSON file,
// keyed by constants.SuspendedWatchMemoKey.
type FileMemoStore struct {
	filePath   string
	fileClient file.FileOperations
	logger     zerolog.Logger
	mu         sync.Mutex
}

// NewFileMemoStore initializes a new FileMemoStore
func NewFileMemoStore(filePath string, fileClient file.FileOperations, logger zerolog.Logger) *FileMemoStore {
	return &FileMemoStore{
		filePath:   filePath,
		fileClient: fileClient,
		logger:     logger,
	}
}

// Load reports whether a watch was suspended. A missing file means false.
func (s *FileMemoStore) Load() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.readState()
	if err != nil {
		return false, err
	}
	return state[constants.SuspendedWatchMemoKey], nil
}

// Save records the flag.
func (s *FileMemoStore) Save(wasWatching bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.readState()
	if err != nil {
		return err
	}
	state[constants.SuspendedWatchMemoKey] = wasWatching
	if err := s.fileClient.WriteJsonFile(s.filePath, state); err != nil {
		s.logger.Error().Err(err).Str("file", s.filePath).Msg("Failed to write memo file")
		return err
	}
	return nil
}

// Clear removes the flag, leaving other keys intact.
func (s *FileMemoStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.readState()
	if err != nil {
		return err
	}
	if _, ok := state[constants.SuspendedWatchMemoKey]; !ok {
		return nil
	}
	delete(state, constants.SuspendedWatchMemoKey)
	if err := s.fileClient.WriteJsonFile(s.filePath, state); err != nil {
		s.logger.Error().Err(err).Str("file", s.filePath).Msg("Failed to write memo file")
		return err
	}
	return nil
}

func (s *FileMemoStore) readState() (map[string]bool, error) {
	state := make(map[string]bool)
	if err := s.fileClient.ReadJsonFile(s.filePath, &state); err != nil {
		if os.IsNotExist(err) {
			return make(map[string]bool), nil
		}
		s.logger.Error().Err(err).Str("file", s.filePath).Msg("Failed to read memo file")
		return nil, err
	}
	return state, nil
}

// MemoryMemoStore keeps the flag in process memory.
type MemoryMemoStore struct {
	mu    sync.Mutex
	state map[string]bool
}

// NewMemoryMemoStore creates an empty in-memory store.
func NewMemoryMemoStore() *MemoryMemoStore {
	return &MemoryMemoStore{state: make(map[string]bool)}
}

func (s *MemoryMemoStore) Load() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state[constants.SuspendedWatchMemoKey], nil
}

func (s *MemoryMemoStore) Save(wasWatching bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[constants.SuspendedWatchMemoKey] = wasWatching
	return nil
}

func (s *MemoryMemoStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state, constants.SuspendedWatchMemoKey)
	return nil
}

// IsSet reports whether the flag key is present at all.
func (s *MemoryMemoStore) IsSet() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.state[constants.SuspendedWatchMemoKey]
	return ok
}
