package realtime

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ClientKind mengelompokkan koneksi realtime.
type ClientKind string

const (
	KindCustomer   ClientKind = "customer"
	KindManagement ClientKind = "management"
	KindDev        ClientKind = "dev"
)

var ErrUnknownClientKind = errors.New("unknown client type")

func ParseClientKind(s string) (ClientKind, error) {
	switch ClientKind(s) {
	case KindCustomer, KindManagement, KindDev:
		return ClientKind(s), nil
	}
	return "", ErrUnknownClientKind
}

// wireConn adalah bagian dari *websocket.Conn yang dipakai Client.
// Dipisah sebagai interface supaya registry/bus bisa dites tanpa
// koneksi websocket sungguhan.
type wireConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client membungkus satu koneksi websocket dengan antrian kirim
// sendiri. Satu goroutine penulis per koneksi menjamin urutan kirim
// sesuai urutan publish; antrian penuh berarti pesan di-drop
// (pengiriman memang best-effort, client akan re-fetch).
type Client struct {
	Seq         uint64     `json:"seq"`
	Kind        ClientKind `json:"client_type"`
	Page        string     `json:"page"`
	DomainID    *uint      `json:"domain_id,omitempty"`
	RemoteAddr  string     `json:"remote_addr"`
	ConnectedAt time.Time  `json:"connected_at"`

	conn      wireConn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

const sendQueueSize = 32

func newClient(conn wireConn, kind ClientKind, page string, domainID *uint, addr string) *Client {
	c := &Client{
		Kind:        kind,
		Page:        page,
		DomainID:    domainID,
		RemoteAddr:  addr,
		ConnectedAt: time.Now(),
		conn:        conn,
		send:        make(chan []byte, sendQueueSize),
		done:        make(chan struct{}),
	}
	go c.writePump()
	return c
}

// NewClient membuat client untuk koneksi websocket yang sudah di-upgrade.
func NewClient(conn *websocket.Conn, kind ClientKind, page string, domainID *uint, addr string) *Client {
	return newClient(conn, kind, page, domainID, addr)
}

// Send memasukkan event ke antrian kirim tanpa menunggu. Gagal kirim
// tidak pernah dipropagasi ke pemanggil (lihat kebijakan TransportError).
func (c *Client) Send(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[realtime] error marshaling event %s: %v", ev.Type, err)
		return
	}
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case <-c.done:
	case c.send <- data:
	default:
		log.Printf("[realtime] send queue full, dropping %s for client #%d", ev.Type, c.Seq)
	}
}

// Close menutup antrian dan koneksi. Aman dipanggil berkali-kali dari
// handler close maupun error.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Kick memberi tahu client lalu menutup koneksinya. Jeda singkat memberi
// kesempatan pesan terkirim sebelum socket ditutup, seperti perilaku
// panel dev saat memutus sesi.
func (c *Client) Kick(reason string) {
	c.Send(NewForceDisconnectEvent(reason, c.Kind))
	go func() {
		time.Sleep(100 * time.Millisecond)
		c.Close()
	}()
}

func (c *Client) writePump() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("[realtime] write error to client #%d: %v", c.Seq, err)
				c.Close()
				return
			}
		}
	}
}
