package utils

import (
	"time"

	"github.com/yeremiapane/table-order-app/models"
	"gorm.io/gorm"
)

// RecordAudit menulis satu entri audit log. Gagal menulis log tidak
// boleh menggagalkan mutasi utama: error hanya dicatat lalu ditelan.
func RecordAudit(db *gorm.DB, actorID *uint, actorName, action, details string) {
	entry := models.AuditLog{
		ActorID:   actorID,
		ActorName: actorName,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now(),
	}
	if err := db.Create(&entry).Error; err != nil {
		if ErrorLogger != nil {
			ErrorLogger.Printf("failed to record audit log (%s): %v", action, err)
		}
	}
}
