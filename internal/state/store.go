package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/codelens/driftscan/internal/producer"
	"github.com/codelens/driftscan/internal/settings"
	"github.com/codelens/driftscan/internal/types"
)

var (
	// ErrInvalidPhase is returned when a phase name outside the fixed
	// sequence is started. The state is left unchanged.
	ErrInvalidPhase = errors.New("invalid phase")

	// ErrNoActiveScan is returned by mutations that require a run when no
	// state document exists.
	ErrNoActiveScan = errors.New("no active scan")

	// ErrUnknownCategory is returned when findings are appended to a
	// category outside the five fixed sequences.
	ErrUnknownCategory = errors.New("unknown findings category")
)

const stateFileName = "state.yaml"

// Store persists the scan state document for one project root.
//
// Producers run concurrently but every state mutation funnels through the
// store's mutex: each operation loads the whole document, mutates it in
// memory and writes it back atomically. Without this serialization the
// concurrent read-modify-write cycles would silently lose updates.
type Store struct {
	mu   sync.Mutex
	root string
}

// NewStore returns a store rooted at the given project directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Path returns the state document location.
func (s *Store) Path() string {
	return filepath.Join(s.root, settings.DirName, stateFileName)
}

// Load reads the current state. A missing document is a valid "no active
// run" condition and returns (nil, nil).
func (s *Store) Load() (*ScanState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Create starts a fresh run: a new state document with the settings
// snapshot, phase settings-check, status pending, and empty producer
// results and findings. Any previous document is replaced.
func (s *Store) Create(cfg settings.Settings) (*ScanState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := newScanState(cfg, time.Now())
	if err := s.save(st); err != nil {
		return nil, err
	}
	return st, nil
}

// StartPhase moves the machine to the named phase: sets current, appends an
// in-progress history entry and marks the run in_progress. A name outside
// the fixed sequence is rejected with ErrInvalidPhase and the persisted
// state is untouched.
func (s *Store) StartPhase(name Phase) (*ScanState, error) {
	if !ValidPhase(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPhase, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrNoActiveScan
	}

	now := time.Now()
	st.Phase.Current = name
	st.Phase.History = append(st.Phase.History, PhaseEntry{
		Phase:     name,
		Status:    PhaseInProgress,
		StartedAt: now,
	})
	st.Status = StatusInProgress

	if err := s.save(st); err != nil {
		return nil, err
	}
	return st, nil
}

// CompletePhase records the current phase as completed with the given
// result payload and advances current to the next phase in sequence (or
// keeps the terminal phase). Reaching the terminal phase marks the run
// completed and stamps the completion time.
//
// If the last history entry is still in progress it is completed in place;
// otherwise a completed entry for the current phase is appended, so a
// caller driving the machine with CompletePhase alone still accumulates
// one history entry per call.
func (s *Store) CompletePhase(result any) (*ScanState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrNoActiveScan
	}

	now := time.Now()
	if n := len(st.Phase.History); n > 0 && st.Phase.History[n-1].Status == PhaseInProgress {
		entry := &st.Phase.History[n-1]
		entry.Status = PhaseCompleted
		entry.CompletedAt = &now
		entry.Result = result
	} else {
		st.Phase.History = append(st.Phase.History, PhaseEntry{
			Phase:       st.Phase.Current,
			Status:      PhaseCompleted,
			StartedAt:   now,
			CompletedAt: &now,
			Result:      result,
		})
	}

	st.Phase.Current = nextPhase(st.Phase.Current)
	if st.Phase.Current == PhaseComplete {
		st.Status = StatusCompleted
		if st.CompletedAt == nil {
			st.CompletedAt = &now
		}
	}

	if err := s.save(st); err != nil {
		return nil, err
	}
	return st, nil
}

// RecordProducerResult stores a producer's payload and completion time
// under its own key. With no active run it reports (false, nil): an
// absence signal for the caller, not a failure. Re-recording a producer
// overwrites its previous result (retry semantics).
func (s *Store) RecordProducerResult(id string, result *producer.Result) (bool, error) {
	if !producer.KnownSource(id) {
		return false, fmt.Errorf("unknown producer id %q", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return false, err
	}
	if st == nil {
		return false, nil
	}

	if st.Producers == nil {
		st.Producers = make(map[string]*ProducerRecord)
	}
	st.Producers[id] = &ProducerRecord{
		Status:      "completed",
		CompletedAt: time.Now(),
		Result:      result,
	}

	if err := s.save(st); err != nil {
		return false, err
	}
	return true, nil
}

// AppendFindings concatenates items onto the named category sequence,
// preserving insertion order.
func (s *Store) AppendFindings(category string, items []types.Finding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return err
	}
	if st == nil {
		return ErrNoActiveScan
	}

	if err := st.Findings.Append(category, items); err != nil {
		return err
	}
	return s.save(st)
}

// SetReport stores the final report on the run.
func (s *Store) SetReport(r *types.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return err
	}
	if st == nil {
		return ErrNoActiveScan
	}

	st.Report = r
	return s.save(st)
}

// Clear removes the state document. A missing document is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing state: %w", err)
	}
	return nil
}

// load reads and parses the document. Caller holds the mutex.
func (s *Store) load() (*ScanState, error) {
	data, err := os.ReadFile(s.Path())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state: %w", err)
	}

	var st ScanState
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parsing state: %w", err)
	}
	if st.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("state schema version %d is newer than supported %d", st.SchemaVersion, SchemaVersion)
	}
	return &st, nil
}

// save stamps UpdatedAt and writes the whole document atomically: staged to
// a temp file, then renamed over the previous version, so a failed write
// never corrupts the prior valid document.
func (s *Store) save(st *ScanState) error {
	st.UpdatedAt = time.Now()

	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	dir := filepath.Join(s.root, settings.DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	path := s.Path()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing state temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing state document: %w", err)
	}
	return nil
}
