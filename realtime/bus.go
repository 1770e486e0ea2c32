package realtime

// Bus melakukan fan-out event ke audiens yang dipilih dari registry.
// Semua pengiriman fire-and-forget: tanpa ack, tanpa retry, tanpa
// jaminan urutan antar penerima. Koneksi yang sudah mati dibersihkan
// oleh read loop-nya sendiri, bukan oleh bus.
type Bus struct {
	registry *Registry
}

func NewBus(registry *Registry) *Bus {
	return &Bus{registry: registry}
}

// PublishToAll mengirim event ke semua koneksi hidup.
func (b *Bus) PublishToAll(ev Event) {
	b.registry.each(func(c *Client) {
		c.Send(ev)
	})
}

// PublishToKind mengirim event hanya ke koneksi dengan jenis tertentu.
func (b *Bus) PublishToKind(kind ClientKind, ev Event) {
	b.registry.each(func(c *Client) {
		if c.Kind == kind {
			c.Send(ev)
		}
	})
}

// PublishToDomain mengirim event ke satu koneksi yang terdaftar untuk
// domain id tsb. Kalau tidak ada, event dilewati diam-diam.
func (b *Bus) PublishToDomain(kind ClientKind, domainID uint, ev Event) {
	if c := b.registry.FindByDomain(kind, domainID); c != nil {
		c.Send(ev)
	}
}

// PublishSnapshot mengirim daftar koneksi terkini ke semua panel dev.
// Dipanggil pada setiap mutasi registry (connect/disconnect) supaya
// panel dev punya live view tanpa polling.
func (b *Bus) PublishSnapshot() {
	ev := NewRegistrySnapshotEvent(b.registry.ListAll())
	b.PublishToKind(KindDev, ev)
}
