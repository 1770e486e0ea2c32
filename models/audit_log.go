package models

import "time"

// AuditLog bersifat append-only: tidak pernah diubah atau dihapus satuan.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ActorID   *uint     `gorm:"index" json:"actor_id,omitempty"`
	ActorName string    `gorm:"type:varchar(255);not null" json:"actor_name"`
	Action    string    `gorm:"type:varchar(100);not null;index" json:"action"`
	Details   string    `gorm:"type:text" json:"details"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
