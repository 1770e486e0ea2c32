package realtime

import (
	"log"
	"sync"
	"time"
)

// RegistryEntry adalah potret satu koneksi hidup, dipakai untuk snapshot
// panel dev dan endpoint rekonsiliasi.
type RegistryEntry struct {
	Seq         uint64     `json:"seq"`
	Kind        ClientKind `json:"client_type"`
	Page        string     `json:"page"`
	DomainID    *uint      `json:"domain_id,omitempty"`
	RemoteAddr  string     `json:"remote_addr"`
	ConnectedAt time.Time  `json:"connected_at"`
}

// Registry adalah peta otoritatif koneksi realtime yang sedang hidup.
// Dibuat sekali di main dan di-inject ke transport dan controller;
// tidak ada state global (beda dengan map tertutup closure di versi
// lama berbasis event loop).
type Registry struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
	nextSeq uint64
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[*Client]struct{})}
}

// Register memasukkan client dan memberi sequence id. Kalau sudah ada
// koneksi hidup dengan (kind, domain id) yang sama, koneksi lama
// di-kick dulu: satu sesi/satu user hanya boleh punya satu perwakilan
// hidup, supaya dua tablet tidak saling menimpa state.
func (r *Registry) Register(c *Client) {
	var superseded *Client

	r.mu.Lock()
	r.nextSeq++
	c.Seq = r.nextSeq
	if c.DomainID != nil {
		for old := range r.clients {
			if old.Kind == c.Kind && old.DomainID != nil && *old.DomainID == *c.DomainID {
				superseded = old
				delete(r.clients, old)
				break
			}
		}
	}
	r.clients[c] = struct{}{}
	r.mu.Unlock()

	if superseded != nil {
		log.Printf("[realtime] client #%d superseded by #%d (%s domain %d)",
			superseded.Seq, c.Seq, c.Kind, *c.DomainID)
		superseded.Kick("Sesi dibuka di perangkat lain.")
	}
}

// Remove melepas client dari registry. No-op kalau sudah tidak ada,
// jadi aman dipanggil dari handler close maupun error.
func (r *Registry) Remove(c *Client) {
	r.mu.Lock()
	delete(r.clients, c)
	r.mu.Unlock()
}

func (r *Registry) snapshotLocked() []RegistryEntry {
	entries := make([]RegistryEntry, 0, len(r.clients))
	for c := range r.clients {
		entries = append(entries, RegistryEntry{
			Seq:         c.Seq,
			Kind:        c.Kind,
			Page:        c.Page,
			DomainID:    c.DomainID,
			RemoteAddr:  c.RemoteAddr,
			ConnectedAt: c.ConnectedAt,
		})
	}
	return entries
}

// ListAll mengembalikan snapshot semua koneksi hidup.
func (r *Registry) ListAll() []RegistryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// ListByKind menyaring snapshot per jenis client.
func (r *Registry) ListByKind(kind ClientKind) []RegistryEntry {
	all := r.ListAll()
	out := make([]RegistryEntry, 0, len(all))
	for _, e := range all {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// FindByDomain mencari koneksi hidup yang mewakili domain id tsb
// (sessionID untuk customer, userID untuk management/dev).
func (r *Registry) FindByDomain(kind ClientKind, domainID uint) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.clients {
		if c.Kind == kind && c.DomainID != nil && *c.DomainID == domainID {
			return c
		}
	}
	return nil
}

// FindBySeq mencari koneksi berdasarkan sequence id (dipakai panel dev
// untuk memutus satu koneksi).
func (r *Registry) FindBySeq(seq uint64) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.clients {
		if c.Seq == seq {
			return c
		}
	}
	return nil
}

// Count mengembalikan jumlah koneksi hidup.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (r *Registry) each(fn func(*Client)) {
	r.mu.Lock()
	clients := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.Unlock()

	// Kirim di luar lock: Send tidak blocking, tapi tidak ada alasan
	// menahan registry selama fan-out.
	for _, c := range clients {
		fn(c)
	}
}
