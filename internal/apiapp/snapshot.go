package apiapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/phillip-england/shiftsuite/internal/roster"
	"github.com/ulikunitz/xz"
)

const (
	snapshotFilename = "session_snapshot.json.xz"
	// Cap on the decompressed payload; guards against archive bombs.
	maxSnapshotBytes = 64 << 20
)

func (s *server) sessionSnapshotHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch r.Method {
	case http.MethodGet:
		s.downloadSnapshot(w, r)
	case http.MethodPost:
		s.restoreSnapshot(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *server) downloadSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := encodeSessionSnapshot(s.session.State())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "unable to encode snapshot")
		return
	}
	w.Header().Set("Content-Type", "application/x-xz")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", snapshotFilename))
	_, _ = w.Write(data)
}

func (s *server) restoreSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload form")
		return
	}
	file, _, err := r.FormFile("snapshot")
	if err != nil {
		writeError(w, http.StatusBadRequest, "snapshot file is required")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, 16<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to read snapshot file")
		return
	}
	if len(raw) == 0 {
		writeError(w, http.StatusBadRequest, "snapshot file is empty")
		return
	}

	state, err := decodeSessionSnapshot(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.session.LoadState(state); err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "session restored",
		"id":        s.session.ID(),
		"employees": len(s.session.Employees()),
	})
}

func encodeSessionSnapshot(state roster.State) ([]byte, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	xzWriter, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := xzWriter.Write(payload); err != nil {
		return nil, err
	}
	if err := xzWriter.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeSessionSnapshot(data []byte) (roster.State, error) {
	var state roster.State
	xzReader, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return state, fmt.Errorf("invalid snapshot archive: %w", err)
	}
	payload, err := io.ReadAll(io.LimitReader(xzReader, maxSnapshotBytes))
	if err != nil {
		return state, fmt.Errorf("unable to read snapshot archive: %w", err)
	}
	if err := json.Unmarshal(payload, &state); err != nil {
		return state, fmt.Errorf("invalid snapshot payload: %w", err)
	}
	return state, nil
}
