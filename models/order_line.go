package models

import "time"

// Status baris pesanan: pending -> delivered atau pending -> cancelled,
// tidak pernah mundur. Pembatalan parsial memecah baris (lihat controller),
// baris asli tidak pernah dihapus supaya jejak audit utuh.
const (
	LinePending   = "pending"
	LineDelivered = "delivered"
	LineCancelled = "cancelled"
)

type OrderLine struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	SessionID    uint         `gorm:"not null;index" json:"session_id"`
	Session      TableSession `gorm:"foreignKey:SessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	ProductID    uint         `gorm:"not null;index" json:"product_id"`
	Product      Product      `gorm:"foreignKey:ProductID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"product"`
	Quantity     int          `gorm:"not null" json:"quantity"`
	UnitPrice    float64      `gorm:"type:decimal(10,2);not null" json:"unit_price"` // snapshot harga saat pesan
	Observation  *string      `gorm:"type:text" json:"observation,omitempty"`
	Status       string       `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CancelReason *string      `gorm:"type:varchar(255)" json:"cancel_reason,omitempty"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}
