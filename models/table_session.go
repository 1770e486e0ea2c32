package models

import "time"

// Status sesi: sekali 'finalized' tidak pernah dibuka kembali.
const (
	SessionActive    = "active"
	SessionFinalized = "finalized"
)

// TableSession merepresentasikan satu customer menempati satu meja,
// dari mulai duduk sampai tutup bon.
type TableSession struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	TableID          uint        `gorm:"not null;index" json:"table_id"`
	Table            Table       `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	CustomerName     string      `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerPhone    *string     `gorm:"type:varchar(50)" json:"customer_phone,omitempty"`
	CustomerDocument *string     `gorm:"type:varchar(50)" json:"customer_document,omitempty"`
	Status           string      `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	PaymentMethod    *string     `gorm:"type:varchar(100)" json:"payment_method,omitempty"`
	ClosedByID       *uint       `gorm:"index" json:"closed_by_id,omitempty"`
	ClosedBy         *User       `gorm:"foreignKey:ClosedByID" json:"closed_by,omitempty"`
	StartedAt        time.Time   `gorm:"not null;autoCreateTime" json:"started_at"`
	EndedAt          *time.Time  `json:"ended_at,omitempty"`
	Lines            []OrderLine `gorm:"foreignKey:SessionID" json:"lines,omitempty"`
}
