package realtime

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeConn merekam frame yang ditulis, tanpa socket sungguhan.
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	f.frames = append(f.frames, cp)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// events menunggu writePump menguras antrian lalu men-decode semua frame.
func (f *fakeConn) events(t *testing.T) []Event {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	var last int
	for time.Now().Before(deadline) {
		f.mu.Lock()
		n := len(f.frames)
		f.mu.Unlock()
		if n == last && n > 0 {
			break
		}
		last = n
		time.Sleep(10 * time.Millisecond)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Event, 0, len(f.frames))
	for _, frame := range f.frames {
		var ev Event
		if err := json.Unmarshal(frame, &ev); err != nil {
			t.Fatalf("invalid frame: %v", err)
		}
		out = append(out, ev)
	}
	return out
}

func uintPtr(v uint) *uint { return &v }

func newTestClient(kind ClientKind, domainID *uint) (*Client, *fakeConn) {
	conn := &fakeConn{}
	return newClient(conn, kind, "test", domainID, "127.0.0.1"), conn
}

func TestRegisterAssignsSequence(t *testing.T) {
	reg := NewRegistry()

	c1, _ := newTestClient(KindManagement, uintPtr(1))
	c2, _ := newTestClient(KindManagement, uintPtr(2))
	reg.Register(c1)
	reg.Register(c2)

	assert.Equal(t, uint64(1), c1.Seq)
	assert.Equal(t, uint64(2), c2.Seq)
	assert.Equal(t, 2, reg.Count())
}

func TestRegisterSupersedesSameDomain(t *testing.T) {
	reg := NewRegistry()

	old, oldConn := newTestClient(KindCustomer, uintPtr(7))
	reg.Register(old)

	replacement, _ := newTestClient(KindCustomer, uintPtr(7))
	reg.Register(replacement)

	// Koneksi lama dapat FORCE_DISCONNECT lalu ditutup; registry hanya
	// menyimpan penggantinya.
	assert.Equal(t, 1, reg.Count())
	assert.Same(t, replacement, reg.FindByDomain(KindCustomer, 7))

	evs := oldConn.events(t)
	if assert.Len(t, evs, 1) {
		assert.Equal(t, EventForceDisconnect, evs[0].Type)
	}
	assert.Eventually(t, oldConn.isClosed, time.Second, 10*time.Millisecond)
}

func TestRegisterSameDomainDifferentKindCoexists(t *testing.T) {
	reg := NewRegistry()

	customer, _ := newTestClient(KindCustomer, uintPtr(3))
	management, _ := newTestClient(KindManagement, uintPtr(3))
	reg.Register(customer)
	reg.Register(management)

	assert.Equal(t, 2, reg.Count())
}

func TestRegisterWithoutDomainNeverSupersedes(t *testing.T) {
	reg := NewRegistry()

	c1, _ := newTestClient(KindManagement, nil)
	c2, _ := newTestClient(KindManagement, nil)
	reg.Register(c1)
	reg.Register(c2)

	assert.Equal(t, 2, reg.Count())
}

func TestRemoveIsIdempotent(t *testing.T) {
	reg := NewRegistry()

	c, _ := newTestClient(KindDev, uintPtr(1))
	reg.Register(c)
	reg.Remove(c)
	reg.Remove(c)

	assert.Equal(t, 0, reg.Count())
	assert.Nil(t, reg.FindBySeq(c.Seq))
}

func TestListByKind(t *testing.T) {
	reg := NewRegistry()

	c1, _ := newTestClient(KindCustomer, uintPtr(1))
	c2, _ := newTestClient(KindCustomer, uintPtr(2))
	c3, _ := newTestClient(KindDev, uintPtr(9))
	reg.Register(c1)
	reg.Register(c2)
	reg.Register(c3)

	assert.Len(t, reg.ListByKind(KindCustomer), 2)
	assert.Len(t, reg.ListByKind(KindDev), 1)
	assert.Len(t, reg.ListByKind(KindManagement), 0)
	assert.Len(t, reg.ListAll(), 3)
}

func TestKickSendsReasonThenCloses(t *testing.T) {
	c, conn := newTestClient(KindCustomer, uintPtr(5))

	c.Kick("maintenance")

	evs := conn.events(t)
	if assert.Len(t, evs, 1) {
		assert.Equal(t, EventForceDisconnect, evs[0].Type)
		payload := evs[0].Payload.(map[string]interface{})
		assert.Equal(t, "maintenance", payload["reason"])
		assert.Equal(t, "customer", payload["client_type"])
	}
	assert.Eventually(t, conn.isClosed, time.Second, 10*time.Millisecond)
}

func TestSendAfterCloseIsNoop(t *testing.T) {
	c, conn := newTestClient(KindManagement, uintPtr(1))
	c.Close()

	// Tidak boleh panic atau blocking.
	c.Send(NewMenuUpdatedEvent())

	time.Sleep(50 * time.Millisecond)
	conn.mu.Lock()
	defer conn.mu.Unlock()
	assert.Empty(t, conn.frames)
}
