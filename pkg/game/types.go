package game

import (
	"github.com/cbodonnell/galplayer/pkg/display"
	"github.com/cbodonnell/galplayer/pkg/narrative"
)

type CommandType string

// Command types accepted by Enqueue.
const (
	CommandSwitchScene CommandType = "switch"
	CommandAdvance     CommandType = "advance"
	// CommandInteract is an activation of the text area.
	CommandInteract CommandType = "interact"
	// CommandNotify is an activation anywhere else; it only unlocks audio.
	CommandNotify  CommandType = "notify"
	CommandRestart CommandType = "restart"
)

// Command is a request from outside the loop, such as the debug API.
type Command struct {
	Type  CommandType `json:"type"`
	Scene string      `json:"scene,omitempty"`
	Index int         `json:"index,omitempty"`
}

type EventType string

const (
	EventProgress   EventType = "progress"
	EventReady      EventType = "ready"
	EventBootFailed EventType = "boot_failed"
	EventScene      EventType = "scene"
	EventLine       EventType = "line"
	EventRestart    EventType = "restart"
)

type Event struct {
	Type     EventType `json:"type"`
	Progress float64   `json:"progress,omitempty"`
	Error    string    `json:"error,omitempty"`
	State    Snapshot  `json:"state"`
}

// EventHandler runs on the loop and must not block.
type EventHandler func(event Event)

type ChannelState struct {
	Current string `json:"current,omitempty"`
	Pending string `json:"pending,omitempty"`
}

// Snapshot is a copy of the playback state that is safe to read from any
// goroutine.
type Snapshot struct {
	Session    string                  `json:"session"`
	Story      string                  `json:"story"`
	Scene      string                  `json:"scene"`
	SceneType  narrative.SceneType     `json:"scene_type,omitempty"`
	Index      int                     `json:"index"`
	Revealing  bool                    `json:"revealing"`
	Terminal   bool                    `json:"terminal"`
	Busy       bool                    `json:"busy"`
	Queued     int                     `json:"queued"`
	Interacted bool                    `json:"interacted"`
	Display    display.State           `json:"display"`
	Audio      map[string]ChannelState `json:"audio"`
}
