// internal/listener/listener.go
package listener

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tamzrod/cid-monitor/internal/wire"
)

// maxPacket comfortably exceeds the largest legal packet (83 bytes);
// anything longer is still delivered whole so the decoder can classify
// it as malformed with the real bytes on record.
const maxPacket = 256

// Message is one received datagram after classification.
type Message struct {
	Event wire.Event
	Raw   []byte
	From  string
	At    time.Time
}

// Listener is a passive datagram receiver: it decodes whatever arrives
// on the conn and never emits a response.
type Listener struct {
	conn net.PacketConn
}

// Open binds the well-known port.
func Open(ctx context.Context, addr string) (*Listener, error) {
	lc := &net.ListenConfig{}
	conn, err := lc.ListenPacket(ctx, "udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("listener: bind %s: %w", addr, err)
	}
	return &Listener{conn: conn}, nil
}

// New wraps an existing conn (the seam tests use).
func New(conn net.PacketConn) *Listener {
	return &Listener{conn: conn}
}

// Run reads datagrams until ctx is done, decoding each one and sending
// the result on out. One goroutine; no overlap, no retries.
func (l *Listener) Run(ctx context.Context, out chan<- Message) {
	go func() {
		<-ctx.Done()
		_ = l.conn.Close()
	}()

	buf := make([]byte, maxPacket)
	for {
		n, from, err := l.conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Msg("listener: read failed")
			continue
		}
		if n == 0 {
			continue
		}

		raw := make([]byte, n)
		copy(raw, buf[:n])

		msg := Message{
			Event: wire.Decode(raw),
			Raw:   raw,
			From:  addrString(from),
			At:    time.Now(),
		}

		select {
		case out <- msg:
		case <-ctx.Done():
			return
		}
	}
}

// Close releases the socket.
func (l *Listener) Close() error {
	return l.conn.Close()
}

func addrString(a net.Addr) string {
	if a == nil {
		return ""
	}
	return a.String()
}
