package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/skilltree/pkg/domain"
)

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // TreeID -> Set of Channels
	logger      *slog.Logger
}

// NewStreamManager creates a StreamManager that reports dropped messages to
// logger.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

func (sm *StreamManager) Subscribe(treeID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[treeID]; !ok {
		sm.subscribers[treeID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[treeID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[treeID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, treeID)
			}
		}
	}
}

// Subscribers returns the number of open streams for treeID.
func (sm *StreamManager) Subscribers(treeID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[treeID])
}

func (sm *StreamManager) Broadcast(treeID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[treeID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "tree_id", treeID)
		}
	}
}

// SubscribeEvents handles the GET /trees/{treeID}/events request (SSE).
// Each event carries the JSON StateDiff of one change. The optional "watch"
// query parameter (selection, locks, graph) filters the events sent.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	treeID := chi.URLParam(r, "treeID")
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Subscribing to tree updates", "tree_id", treeID)
	ch, cancel := s.Streams.Subscribe(treeID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	var watchList []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		watchList = strings.Split(watch, ",")
	}

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "tree_id", treeID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 && !wanted(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func wanted(msg string, watchList []string) bool {
	var diff domain.StateDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range watchList {
		switch strings.TrimSpace(field) {
		case "selection":
			if len(diff.Selected) > 0 || len(diff.Deselected) > 0 {
				return true
			}
		case "locks":
			if len(diff.Locked) > 0 || len(diff.Unlocked) > 0 {
				return true
			}
		case "graph":
			if len(diff.AddedNodes) > 0 || len(diff.AddedEdges) > 0 {
				return true
			}
		}
	}
	return false
}
