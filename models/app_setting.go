package models

// AppSetting menyimpan konfigurasi key/value (font customer, permission
// home, dsb). Value bisa berupa string polos atau JSON, frontend yang
// menentukan.
type AppSetting struct {
	Key   string `gorm:"primaryKey;type:varchar(100)" json:"key"`
	Value string `gorm:"type:text;not null" json:"value"`
}
