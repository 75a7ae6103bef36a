package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cbodonnell/galplayer/pkg/clients"
	"github.com/cbodonnell/galplayer/pkg/game"
	"github.com/cbodonnell/galplayer/pkg/log"
	"github.com/cbodonnell/galplayer/pkg/messages"
	"github.com/cbodonnell/galplayer/pkg/narrative"
	"github.com/gorilla/mux"
	"nhooyr.io/websocket"
)

const writeTimeout = 5 * time.Second

// Game is the part of *game.GameManager the handlers use.
type Game interface {
	Snapshot() game.Snapshot
	Enqueue(cmd game.Command) error
}

type acceptedResponse struct {
	Queued game.Command `json:"queued"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}

func HandleGetState(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, g.Snapshot())
	}
}

// HandleSwitchScene queues a switch to the scene named by the path. The
// optional index query parameter starts the scene at that dialog line.
func HandleSwitchScene(g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd := game.Command{
			Type:  game.CommandSwitchScene,
			Scene: mux.Vars(r)["sceneID"],
		}
		if raw := r.URL.Query().Get("index"); raw != "" {
			index, err := strconv.Atoi(raw)
			if err != nil || index < 0 {
				http.Error(w, "index must be a non-negative integer", http.StatusBadRequest)
				return
			}
			cmd.Index = index
		}
		enqueue(w, g, cmd)
	}
}

// HandleCommand queues a command that takes no arguments.
func HandleCommand(g Game, commandType game.CommandType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enqueue(w, g, game.Command{Type: commandType})
	}
}

func enqueue(w http.ResponseWriter, g Game, cmd game.Command) {
	if err := g.Enqueue(cmd); err != nil {
		if errors.Is(err, narrative.ErrSceneNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusAccepted, acceptedResponse{Queued: cmd})
}

// HandleEvents upgrades to a websocket that first receives the current state
// and then every playback event. Commands sent by the client are queued like
// the HTTP ones.
func HandleEvents(g Game, clientManager *clients.ClientManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			log.Error("Failed to upgrade to WebSocket: %v", err)
			return
		}
		defer conn.CloseNow()

		client, err := clientManager.AddClient(r.RemoteAddr)
		if err != nil {
			log.Error("Failed to add event client: %v", err)
			conn.Close(websocket.StatusTryAgainLater, "too many clients")
			return
		}
		log.Debug("Event client %d connected from %s", client.ID, client.RemoteAddr)
		defer func() {
			clientManager.RemoveClient(client.ID)
			log.Debug("Event client %d disconnected", client.ID)
		}()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		state, err := messages.NewMessage(client.ID, messages.MessageTypeServerState, g.Snapshot())
		if err != nil {
			log.Error("Failed to build state message: %v", err)
			return
		}
		if err := writeMessage(ctx, conn, state); err != nil {
			log.Debug("Failed to write state to client %d: %v", client.ID, err)
			return
		}

		go readCommands(ctx, cancel, conn, client.ID, g)

		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case b, ok := <-client.Send():
				if !ok {
					return
				}
				if err := writeFrame(ctx, conn, b); err != nil {
					log.Debug("Failed to write event to client %d: %v", client.ID, err)
					return
				}
			}
		}
	}
}

func readCommands(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, clientID uint32, g Game) {
	defer cancel()
	conn.SetReadLimit(messages.MessageBufferSize)
	for {
		_, b, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && ctx.Err() == nil {
				log.Debug("Error reading from event client %d: %v", clientID, err)
			}
			return
		}

		msg, err := messages.DeserializeMessage(b)
		if err == nil && msg.Type != messages.MessageTypeClientCommand {
			err = errors.New("unexpected message type " + msg.Type)
		}
		var cmd game.Command
		if err == nil {
			err = messages.DecodePayload(msg, &cmd)
		}
		if err == nil {
			err = g.Enqueue(cmd)
		}
		if err != nil {
			reply, buildErr := messages.NewMessage(clientID, messages.MessageTypeServerError, messages.ErrorPayload{Message: err.Error()})
			if buildErr != nil {
				log.Error("Failed to build error message: %v", buildErr)
				continue
			}
			if err := writeMessage(ctx, conn, reply); err != nil {
				return
			}
		}
	}
}

func writeMessage(ctx context.Context, conn *websocket.Conn, msg *messages.Message) error {
	b, err := messages.SerializeMessage(msg)
	if err != nil {
		return err
	}
	return writeFrame(ctx, conn, b)
}

func writeFrame(ctx context.Context, conn *websocket.Conn, b []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, b)
}
