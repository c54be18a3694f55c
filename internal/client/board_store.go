package client

import (
	"context"
	"log/slog"
	"sync"
)

// BoardStore caches the candidate pipeline for kanban-style display. Stage
// moves apply optimistically with the same sequence-stamp rollback guard as
// the notification store.
type BoardStore struct {
	client *Client
	logger *slog.Logger

	mu         sync.Mutex
	jobID      string
	candidates []Candidate
	seq        uint64
	observers  []Observer
}

// NewBoardStore wires a board store around the API client.
func NewBoardStore(client *Client, logger *slog.Logger) *BoardStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &BoardStore{client: client, logger: logger}
}

// Subscribe registers an observer notified on every state change.
func (s *BoardStore) Subscribe(observer Observer) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, observer)
	s.mu.Unlock()
}

// Load fetches the pipeline, optionally scoped to one job.
func (s *BoardStore) Load(ctx context.Context, jobID string) error {
	candidates, err := s.client.ListCandidates(ctx, jobID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.jobID = jobID
	s.candidates = candidates
	s.seq++
	observers := s.snapshotObserversLocked()
	s.mu.Unlock()

	notifyAll(observers)
	return nil
}

// Grouped returns candidates bucketed by stage.
func (s *BoardStore) Grouped() map[string][]Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]Candidate)
	for _, candidate := range s.candidates {
		out[candidate.Stage] = append(out[candidate.Stage], candidate)
	}
	return out
}

// Candidates returns a copy of the cached pipeline.
func (s *BoardStore) Candidates() []Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Candidate, len(s.candidates))
	copy(out, s.candidates)
	return out
}

// MoveCandidate optimistically moves a candidate to a new stage, then
// confirms with the server. On failure the move is undone unless a newer
// mutation superseded it.
func (s *BoardStore) MoveCandidate(ctx context.Context, candidateID, toStage string) error {
	s.mu.Lock()
	preImage := make([]Candidate, len(s.candidates))
	copy(preImage, s.candidates)

	moved := false
	for i := range s.candidates {
		if s.candidates[i].ID == candidateID {
			s.candidates[i].Stage = toStage
			moved = true
		}
	}
	s.seq++
	seq := s.seq
	observers := s.snapshotObserversLocked()
	s.mu.Unlock()

	if moved {
		notifyAll(observers)
	}

	_, err := s.client.MoveCandidate(ctx, candidateID, toStage)
	if err != nil {
		s.mu.Lock()
		if s.seq == seq {
			s.candidates = preImage
			s.seq++
			observers = s.snapshotObserversLocked()
			s.mu.Unlock()
			s.logger.WarnContext(ctx, "candidate move rolled back", "candidate_id", candidateID, "error", err)
			notifyAll(observers)
		} else {
			s.mu.Unlock()
			s.logger.WarnContext(ctx, "skipping rollback, board superseded", "candidate_id", candidateID, "error", err)
		}
	}
	return err
}

func (s *BoardStore) snapshotObserversLocked() []Observer {
	out := make([]Observer, len(s.observers))
	copy(out, s.observers)
	return out
}
