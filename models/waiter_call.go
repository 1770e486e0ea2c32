package models

import "time"

const (
	CallPending  = "pending"
	CallAttended = "attended"
)

// WaiterCall adalah panggilan pelayan dari satu meja. Nama meja ikut
// disimpan supaya list chamado tetap terbaca walau meja dihapus.
type WaiterCall struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TableID   uint      `gorm:"not null;index" json:"table_id"`
	TableName string    `gorm:"type:varchar(100);not null" json:"table_name"`
	Status    string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
