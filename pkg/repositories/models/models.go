package models

import "github.com/google/uuid"

// Save is the persisted playback position of one session. Timestamps are
// unix milliseconds.
type Save struct {
	SessionID uuid.UUID `json:"session_id"`
	Story     string    `json:"story"`
	SceneID   string    `json:"scene_id"`
	Index     int       `json:"index"`
	CreatedAt int64     `json:"created_at"`
	UpdatedAt int64     `json:"updated_at"`
}

// SamePosition reports whether two saves point at the same line of the same
// session.
func (s *Save) SamePosition(other *Save) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.SessionID == other.SessionID && s.Story == other.Story &&
		s.SceneID == other.SceneID && s.Index == other.Index
}
