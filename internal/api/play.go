package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pbaille/scribble/internal/animation"
	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/logging"
	"github.com/pbaille/scribble/internal/loop"
	"github.com/pbaille/scribble/internal/story"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// FramesMessage is sent once when playback starts and then once per tick
type FramesMessage struct {
	Tick   int               `json:"tick"`
	Speed  int               `json:"speed"`
	Frames map[uuid.UUID]int `json:"frames"`
}

// ControlMessage is what a client may send on the playback socket
type ControlMessage struct {
	Speed *int `json:"speed,omitempty"`
	Pause bool `json:"pause,omitempty"`
	Play  bool `json:"play,omitempty"`
}

func (s *Server) play(w http.ResponseWriter, r *http.Request) {
	st, ok := s.findStory(w, r)
	if !ok {
		return
	}
	speed := playbackSpeed(r, s.opt.PlaybackSpeed)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger().Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	logging.Logger().Debug("playback connected", "story", st.ID, "speed", speed)
	runPlayback(r.Context(), conn, *st, speed)
	logging.Logger().Debug("playback disconnected", "story", st.ID)
}

// runPlayback plays st on its own loop until the client goes away or ctx
// ends. Every socket write happens on the loop.
func runPlayback(ctx context.Context, conn *websocket.Conn, st domain.Story, speed int) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l := loop.New()
	repo := story.NewRepository(st)
	player := animation.NewPlayer(l, repo, nil)
	tick := 0

	send := func() {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := conn.WriteJSON(FramesMessage{Tick: tick, Speed: player.Speed(), Frames: repo.ActiveFrames()})
		if err != nil {
			cancel()
		}
	}
	repo.Changes.Subscribe(func(ev story.Event) {
		if ev.Kind == story.FramesAdvanced {
			tick++
			send()
		}
	})

	l.Post(func() {
		player.SetSpeed(speed)
		send()
		player.Play()
	})

	go func() {
		defer cancel()
		for {
			var msg ControlMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			l.Post(func() {
				if msg.Speed != nil {
					player.SetSpeed(*msg.Speed)
				}
				switch {
				case msg.Pause:
					player.Stop()
				case msg.Play:
					player.Play()
				}
			})
		}
	}()

	go func() {
		<-ctx.Done()
		l.Post(player.Stop)
		l.Close()
	}()

	l.Run(context.Background())
}
