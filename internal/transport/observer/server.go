// Package observer streams scene mutations and run lifecycle events to
// websocket clients. It is a pure side channel: the evaluator produces the
// same results whether or not anyone is connected.
package observer

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"blockstack.ai/internal/observerproto"
	"blockstack.ai/internal/protocol"
	"blockstack.ai/internal/sim/scene"
)

type Server struct {
	log *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu      sync.Mutex
	clients map[uint64]chan []byte
}

func NewServer(logger *log.Logger) *Server {
	return &Server{
		log:     logger,
		clients: make(map[uint64]chan []byte),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub observerproto.SubscribeMsg
		if err := json.Unmarshal(msg, &sub); err != nil {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad subscribe"), time.Now().Add(time.Second))
			return
		}
		if sub.Type != observerproto.TypeSubscribe || sub.ProtocolVersion != observerproto.Version {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"), time.Now().Add(time.Second))
			return
		}

		id := s.nextID.Add(1)
		out := make(chan []byte, 1024)
		s.mu.Lock()
		s.clients[id] = out
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			delete(s.clients, id)
			s.mu.Unlock()
		}()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		done := make(chan struct{})
		go func() {
			for {
				select {
				case <-done:
					writeErr <- nil
					return
				case b, ok := <-out:
					if !ok {
						writeErr <- nil
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop: keeps the connection alive; client payloads after the
		// handshake are ignored.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		close(done)
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// Broadcast fans a message out to every connected client, dropping for slow
// ones rather than stalling the evaluation.
func (s *Server) Broadcast(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		if s.log != nil {
			s.log.Printf("observer: marshal: %v", err)
		}
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, out := range s.clients {
		select {
		case out <- b:
		default:
		}
	}
}

// The runner notifies the server through its Observer interface.

func (s *Server) SceneLoaded(sc *scene.Scene)  { s.broadcastScene(observerproto.TypeSceneInit, sc) }
func (s *Server) SceneUpdated(sc *scene.Scene) { s.broadcastScene(observerproto.TypeSceneUpdate, sc) }

func (s *Server) StepStarted(index int, instruction string, original []string) {
	s.Broadcast(observerproto.StepMsg{
		Type:            observerproto.TypeStep,
		ProtocolVersion: observerproto.Version,
		Index:           index,
		Instruction:     instruction,
		Original:        original,
	})
}

// RunStarted and RunFinished bracket one evaluated plan.

func (s *Server) RunStarted(method, run, domain, goal string) {
	s.Broadcast(observerproto.RunMsg{
		Type:            observerproto.TypeRunStart,
		ProtocolVersion: observerproto.Version,
		Method:          method,
		Run:             run,
		Domain:          domain,
		Goal:            goal,
	})
}

func (s *Server) RunFinished(res protocol.ResultMsg) {
	s.Broadcast(observerproto.RunMsg{
		Type:            observerproto.TypeRunResult,
		ProtocolVersion: observerproto.Version,
		Method:          res.Method,
		Run:             res.Run,
		Domain:          res.Domain,
		Steps:           res.Steps,
		Errors:          res.Errors,
	})
}

func (s *Server) broadcastScene(msgType string, sc *scene.Scene) {
	entries := sc.Entries()
	boxes := make([]observerproto.BoxState, 0, len(entries))
	for _, e := range entries {
		boxes = append(boxes, observerproto.BoxState{
			Label: e.Label,
			Min:   [3]float64(e.Box.Min),
			Max:   [3]float64(e.Box.Max),
			Table: scene.IsTable(e.Label),
		})
	}
	s.Broadcast(observerproto.SceneMsg{
		Type:            msgType,
		ProtocolVersion: observerproto.Version,
		Boxes:           boxes,
	})
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
