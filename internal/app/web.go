package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/lighthouse_osc/internal/config"
	"github.com/relabs-tech/lighthouse_osc/internal/logging"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// DeviceBoard keeps the latest mirrored pose per device and fans updates out
// to websocket subscribers.
type DeviceBoard struct {
	mu      sync.RWMutex
	devices map[uint32]MirrorPayload
	status  string
	subs    map[chan MirrorPayload]struct{}
}

// NewDeviceBoard returns an empty board.
func NewDeviceBoard() *DeviceBoard {
	return &DeviceBoard{
		devices: make(map[uint32]MirrorPayload),
		subs:    make(map[chan MirrorPayload]struct{}),
	}
}

// Update stores p and forwards it to subscribers. Slow subscribers miss
// updates rather than block the caller.
func (b *DeviceBoard) Update(p MirrorPayload) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.devices[p.Index] = p
	for ch := range b.subs {
		select {
		case ch <- p:
		default:
		}
	}
}

// SetStatus records the sender status ("online" or "offline").
func (b *DeviceBoard) SetStatus(s string) {
	b.mu.Lock()
	b.status = s
	b.mu.Unlock()
}

// Status returns the last sender status.
func (b *DeviceBoard) Status() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

// Devices returns the latest pose of every device, ordered by index.
func (b *DeviceBoard) Devices() []MirrorPayload {
	b.mu.RLock()
	out := make([]MirrorPayload, 0, len(b.devices))
	for _, p := range b.devices {
		out = append(out, p)
	}
	b.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Subscribe registers a buffered update channel. Call the returned func to
// unregister.
func (b *DeviceBoard) Subscribe() (<-chan MirrorPayload, func()) {
	ch := make(chan MirrorPayload, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch, func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
	}
}

// HandleDeviceMessage decodes one mirrored payload into the board.
func (b *DeviceBoard) HandleDeviceMessage(_ mqtt.Client, msg mqtt.Message) {
	var p MirrorPayload
	if err := json.Unmarshal(msg.Payload(), &p); err != nil {
		logging.Logf("web: MQTT payload unmarshal error (%s): %v", msg.Topic(), err)
		return
	}
	b.Update(p)
}

// NewWebHandler serves the device API, the live websocket and static files
// from staticDir (skipped when empty).
func NewWebHandler(b *DeviceBoard, staticDir string) http.Handler {
	mux := http.NewServeMux()

	// JSON API endpoint: latest pose per device
	mux.HandleFunc("/api/devices", func(w http.ResponseWriter, r *http.Request) {
		devices := b.Devices()
		if len(devices) == 0 {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(devices); err != nil {
			logging.Logf("web: json encode error: %v", err)
		}
	})

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		resp := struct {
			Status  string `json:"status"`
			Devices int    `json:"devices"`
		}{Status: b.Status(), Devices: len(b.Devices())}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logging.Logf("web: json encode error: %v", err)
		}
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handleDeviceWS(b, w, r)
	})

	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

// handleDeviceWS sends the current board, then every update, until the
// client goes away.
func handleDeviceWS(b *DeviceBoard, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	updates, unsubscribe := b.Subscribe()
	defer unsubscribe()

	for _, p := range b.Devices() {
		if err := conn.WriteJSON(p); err != nil {
			return
		}
	}

	// Reader: only used to notice the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logging.Logf("web: websocket error: %v", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case p := <-updates:
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(p); err != nil {
				return
			}
		}
	}
}

func RunWeb() error {
	cfg := config.Get()
	board := NewDeviceBoard()

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(fmt.Sprintf("%s-web-%s", cfg.MQTTClientID, uuid.NewString()[:8]))

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	logging.Logf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to device poses and sender status
	topic := DeviceTopicFilter(cfg.MQTTTopicPrefix)
	if token := client.Subscribe(topic, 0, board.HandleDeviceMessage); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	logging.Logf("web: subscribed to MQTT topic %s", topic)

	statusToken := client.Subscribe(StatusTopic(cfg.MQTTTopicPrefix), 1, func(_ mqtt.Client, msg mqtt.Message) {
		board.SetStatus(string(msg.Payload()))
	})
	if statusToken.Wait() && statusToken.Error() != nil {
		return statusToken.Error()
	}

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	logging.Logf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, NewWebHandler(board, "web"))
}
