package hub

import (
	"errors"
	"sync"
)

var (
	ErrViewerClosed = errors.New("viewer connection is not open")
	ErrEgressFull   = errors.New("viewer egress buffer is full")
)

// Conn is the part of a websocket connection the hub needs.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Viewer is one connected realtime client. Its identity is the connection.
type Viewer struct {
	id     uint64
	conn   Conn
	egress chan []byte
	done   chan struct{}

	mu   sync.Mutex
	open bool
}

func newViewer(id uint64, conn Conn, bufSize int) *Viewer {
	return &Viewer{
		id:     id,
		conn:   conn,
		egress: make(chan []byte, bufSize),
		done:   make(chan struct{}),
		open:   true,
	}
}

func (v *Viewer) ID() uint64 { return v.id }

func (v *Viewer) Open() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open
}

func (v *Viewer) enqueue(data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.open {
		return ErrViewerClosed
	}
	select {
	case v.egress <- data:
		return nil
	default:
		return ErrEgressFull
	}
}

// close marks the viewer closed and closes its connection. It reports whether
// this call performed the transition.
func (v *Viewer) close() bool {
	v.mu.Lock()
	if !v.open {
		v.mu.Unlock()
		return false
	}
	v.open = false
	close(v.done)
	v.mu.Unlock()

	v.conn.Close()
	return true
}

// writePump writes queued frames in FIFO order until the viewer closes or a
// write fails.
func (v *Viewer) writePump(messageType int) error {
	for {
		select {
		case <-v.done:
			return nil
		case data := <-v.egress:
			// A frame queued before close must not go out after it.
			if !v.Open() {
				return nil
			}
			if err := v.conn.WriteMessage(messageType, data); err != nil {
				return err
			}
		}
	}
}
