package controllers

import (
	"github.com/gin-gonic/gin"
)

// actorFromContext mengambil identitas aktor dari klaim token untuk
// keperluan audit log.
func actorFromContext(c *gin.Context) (*uint, string) {
	var id *uint
	if v, ok := c.Get("user_id"); ok {
		if uid, ok := v.(uint); ok {
			id = &uid
		}
	}
	name := c.GetString("user_name")
	if name == "" {
		name = "unknown"
	}
	return id, name
}
