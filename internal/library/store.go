package library

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// Store keeps named, ordered playlists of tracks and persists them as a
// single JSON object whose key order is insertion order. Every mutating
// operation rewrites the whole file. Operations on missing playlists or
// out-of-range indices are silent no-ops.
type Store struct {
	path string

	mu    sync.Mutex
	names []string
	lists map[string][]Track
}

// Open loads the store at path. A missing or unreadable file starts the
// store empty; the problem is logged, never surfaced.
func Open(path string) *Store {
	s := &Store{
		path:  path,
		lists: make(map[string][]Track),
	}
	if err := s.load(); err != nil {
		slog.Warn("could not load playlists, starting empty", "path", path, "err", err)
		s.names = nil
		s.lists = make(map[string][]Track)
	}
	return s
}

func (s *Store) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	// Token-level decode so the object's key order survives the trip.
	dec := json.NewDecoder(f)
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("playlists: expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("playlists: expected string key, got %v", keyTok)
		}
		var tracks []Track
		if err := dec.Decode(&tracks); err != nil {
			return err
		}
		if _, exists := s.lists[name]; !exists {
			s.names = append(s.names, name)
		}
		s.lists[name] = tracks
	}
	_, err = dec.Token() // closing brace
	return err
}

// saveLocked rewrites the whole file. Caller must hold s.mu.
func (s *Store) saveLocked() {
	data, err := s.encodeLocked()
	if err != nil {
		slog.Error("could not encode playlists", "path", s.path, "err", err)
		return
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		slog.Error("could not save playlists", "path", s.path, "err", err)
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		slog.Error("could not replace playlists file", "path", s.path, "err", err)
	}
}

func (s *Store) encodeLocked() ([]byte, error) {
	if len(s.names) == 0 {
		return []byte("{}\n"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n  ")
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteString(": ")
		tracks := s.lists[name]
		if tracks == nil {
			tracks = []Track{}
		}
		val, err := json.MarshalIndent(tracks, "  ", "  ")
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteString("\n}\n")
	return buf.Bytes(), nil
}

// Names returns the playlist names in display order.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Tracks returns a copy of the named playlist, or nil if it does not exist.
func (s *Store) Tracks(name string) []Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	tracks, ok := s.lists[name]
	if !ok {
		return nil
	}
	out := make([]Track, len(tracks))
	copy(out, tracks)
	return out
}

// TrackAt returns the track at idx in the named playlist.
func (s *Store) TrackAt(name string, idx int) (Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tracks, ok := s.lists[name]
	if !ok || idx < 0 || idx >= len(tracks) {
		return Track{}, false
	}
	return tracks[idx], true
}

// Len returns the number of tracks in the named playlist.
func (s *Store) Len(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lists[name])
}

func (s *Store) AddPlaylist(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.lists[name]; exists {
		return
	}
	s.names = append(s.names, name)
	s.lists[name] = []Track{}
	s.saveLocked()
}

func (s *Store) RenamePlaylist(old, new string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lists[old]; !ok {
		return
	}
	if _, taken := s.lists[new]; taken {
		return
	}
	for i, n := range s.names {
		if n == old {
			s.names[i] = new
			break
		}
	}
	s.lists[new] = s.lists[old]
	delete(s.lists, old)
	s.saveLocked()
}

func (s *Store) DeletePlaylist(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lists[name]; !ok {
		return
	}
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}
	delete(s.lists, name)
	s.saveLocked()
}

// MovePlaylist swaps the playlist at idx with its neighbor at idx+delta.
func (s *Store) MovePlaylist(idx, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := idx + delta
	if idx < 0 || idx >= len(s.names) || j < 0 || j >= len(s.names) {
		return
	}
	s.names[idx], s.names[j] = s.names[j], s.names[idx]
	s.saveLocked()
}

func (s *Store) AddTrack(name string, tr Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tracks, ok := s.lists[name]
	if !ok {
		return
	}
	s.lists[name] = append(tracks, tr)
	s.saveLocked()
}

// UpdateTrack replaces the track at idx in the named playlist.
func (s *Store) UpdateTrack(name string, idx int, tr Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tracks, ok := s.lists[name]
	if !ok || idx < 0 || idx >= len(tracks) {
		return
	}
	tracks[idx] = tr
	s.saveLocked()
}

func (s *Store) DeleteTrack(name string, idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tracks, ok := s.lists[name]
	if !ok || idx < 0 || idx >= len(tracks) {
		return
	}
	s.lists[name] = append(tracks[:idx], tracks[idx+1:]...)
	s.saveLocked()
}

// MoveTrack swaps the track at idx with its neighbor at idx+delta.
func (s *Store) MoveTrack(name string, idx, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tracks, ok := s.lists[name]
	if !ok {
		return
	}
	j := idx + delta
	if idx < 0 || idx >= len(tracks) || j < 0 || j >= len(tracks) {
		return
	}
	tracks[idx], tracks[j] = tracks[j], tracks[idx]
	s.saveLocked()
}

// MoveTrackBetween removes the track at idx in from and appends it to
// to. No-op when either playlist is missing or they are the same.
func (s *Store) MoveTrackBetween(from string, idx int, to string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from == to {
		return
	}
	src, ok := s.lists[from]
	if !ok || idx < 0 || idx >= len(src) {
		return
	}
	dst, ok := s.lists[to]
	if !ok {
		return
	}
	tr := src[idx]
	s.lists[from] = append(src[:idx], src[idx+1:]...)
	s.lists[to] = append(dst, tr)
	s.saveLocked()
}

// EnsureVideoIDs derives missing video ids for every stored track and
// persists once if anything changed. Returns the set of ids in use.
func (s *Store) EnsureVideoIDs() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make(map[string]string)
	changed := false
	for _, name := range s.names {
		tracks := s.lists[name]
		for i := range tracks {
			if tracks[i].VideoID == "" {
				if vid := VideoID(tracks[i].URL); vid != "" {
					tracks[i].VideoID = vid
					changed = true
				}
			}
			if vid := tracks[i].VideoID; vid != "" {
				ids[vid] = tracks[i].URL
			}
		}
	}
	if changed {
		s.saveLocked()
	}
	return ids
}
