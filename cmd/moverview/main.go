// Live viewer for a mover test scene: simulates a small world at a fixed
// tick rate and streams mover state to websocket subscribers as JSON.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"math"
	"net/http"
	"sync"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/gorilla/websocket"

	"physics3d/internal/engine"
	"physics3d/internal/mover"
	"physics3d/internal/physics"
)

const (
	tickRate  = 30 // simulation ticks per second
	writeWait = 10 * time.Second
)

type moverState struct {
	ID       string  `json:"id"`
	X        float32 `json:"x"`
	Y        float32 `json:"y"`
	Z        float32 `json:"z"`
	Grounded bool    `json:"grounded"`
}

type stateMessage struct {
	Type       string       `json:"type"`
	Tick       uint64       `json:"tick"`
	Movers     []moverState `json:"movers"`
	ServerTime int64        `json:"serverTime"`
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub owns the simulation and the subscriber set. The simulation runs on
// one goroutine; subscribers come and go from HTTP handler goroutines.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*subscriber]struct{}

	world  *physics.World
	movers []*mover.Mover
	tick   uint64
}

func NewHub() *Hub {
	h := &Hub{
		subscribers: make(map[*subscriber]struct{}),
		world:       physics.NewWorld(),
	}
	h.buildScene()
	return h
}

// buildScene lays out a small obstacle course: floor, a staircase of
// climbable steps, a wall, a rock and a handful of wandering creatures.
func (h *Hub) buildScene() {
	settings := mover.DefaultSettings()

	addStatic := func(name string, pos, size rl.Vector3) {
		e := engine.NewEntity(name)
		e.Transform.Position = pos
		c, err := physics.NewCollider(e, physics.Box{Size: size}, physics.LayerStatic)
		if err != nil {
			log.Fatalf("scene: %v", err)
		}
		h.world.Add(c)
	}

	addStatic("Floor", rl.Vector3{Y: -0.5}, rl.Vector3{X: 40, Y: 1, Z: 40})
	addStatic("Wall", rl.Vector3{X: 10, Y: 2}, rl.Vector3{X: 1, Y: 4, Z: 12})
	for i := 0; i < 4; i++ {
		height := 0.2 * float32(i+1)
		addStatic("Step", rl.Vector3{X: -6 - float32(i), Y: height - 0.1},
			rl.Vector3{X: 1, Y: 0.2, Z: 6})
	}

	addMover := func(name string, pos rl.Vector3, policy mover.CollisionPolicy) *mover.Mover {
		e := engine.NewEntity(name)
		e.Transform.Position = pos
		m := mover.New(h.world, settings, policy)
		e.AddComponent(m)
		if _, err := m.AddCollider(physics.Capsule{
			Radius: 0.4,
			Height: 1.8,
			Axis:   physics.CapsuleAxisY,
		}, rl.Vector3{}); err != nil {
			log.Fatalf("scene: %v", err)
		}
		m.PushRangeMin = 0
		m.PushRangeMax = 20
		h.movers = append(h.movers, m)
		return m
	}

	for i := 0; i < 6; i++ {
		angle := float64(i) / 6 * 2 * math.Pi
		m := addMover("Creature", rl.Vector3{
			X: float32(5 * math.Cos(angle)),
			Y: 1,
			Z: float32(5 * math.Sin(angle)),
		}, mover.CreaturePolicy{})
		m.Weight = 2 + float32(i)
	}

	rock := addMover("Rock", rl.Vector3{X: 3, Y: 1}, mover.SimplePolicy{})
	rock.IsRock = true
	rock.Weight = 100
}

// Run drives the simulation loop and broadcasts after every tick.
func (h *Hub) Run() {
	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	delta := float32(1.0 / tickRate)
	for range ticker.C {
		h.mu.Lock()
		h.step(delta)
		data := h.encodeState()
		subs := make([]*subscriber, 0, len(h.subscribers))
		for s := range h.subscribers {
			subs = append(subs, s)
		}
		h.mu.Unlock()

		for _, s := range subs {
			if err := s.send(data); err != nil {
				h.Unsubscribe(s)
			}
		}
	}
}

func (h *Hub) step(delta float32) {
	h.tick++
	for i, m := range h.movers {
		if m.IsRock {
			m.Update(delta)
			continue
		}
		// Wander in slow circles so pushes and climbs keep happening.
		angle := float64(h.tick)/90 + float64(i)
		m.Velocity.Movement = rl.Vector3{
			X: float32(1.5 * math.Cos(angle)),
			Z: float32(1.5 * math.Sin(angle)),
		}
		m.Update(delta)
	}
}

func (h *Hub) encodeState() []byte {
	states := make([]moverState, 0, len(h.movers))
	for _, m := range h.movers {
		e := m.GetEntity()
		states = append(states, moverState{
			ID:       e.Name,
			X:        e.Transform.Position.X,
			Y:        e.Transform.Position.Y,
			Z:        e.Transform.Position.Z,
			Grounded: m.Grounded,
		})
	}
	data, err := json.Marshal(stateMessage{
		Type:       "state",
		Tick:       h.tick,
		Movers:     states,
		ServerTime: time.Now().UnixMilli(),
	})
	if err != nil {
		log.Printf("encode state: %v", err)
		return []byte(`{"type":"state","movers":[]}`)
	}
	return data
}

func (h *Hub) Subscribe(conn *websocket.Conn) *subscriber {
	s := &subscriber{conn: conn}
	h.mu.Lock()
	h.subscribers[s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *Hub) Unsubscribe(s *subscriber) {
	h.mu.Lock()
	delete(h.subscribers, s)
	h.mu.Unlock()
	s.conn.Close()
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	hub := NewHub()
	go hub.Run()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade: %v", err)
			return
		}
		s := hub.Subscribe(conn)

		// Drain incoming messages to process pings and notice closure.
		go func() {
			defer hub.Unsubscribe(s)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})

	log.Printf("moverview listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}
