package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order-app/utils"
)

// Role staff: "general" (gerencia penuh), "orders" (layar pesanan),
// "owner" (panel dev, lolos semua pemeriksaan).
const (
	RoleGeneral = "general"
	RoleOrders  = "orders"
	RoleOwner   = "owner"
)

// RequireStaffRole menolak token meja dan staff di luar role yang
// diizinkan. Owner selalu lolos.
func RequireStaffRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenType, _ := c.Get("token_type")
		if tokenType != utils.TokenTypeStaff {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("staff access required"))
			c.Abort()
			return
		}

		role, _ := c.Get("role")
		userRole, _ := role.(string)
		if userRole == RoleOwner {
			c.Next()
			return
		}

		for _, a := range allowed {
			if userRole == a {
				c.Next()
				return
			}
		}

		utils.RespondError(c, http.StatusForbidden, fmt.Errorf("you do not have permission for this action"))
		c.Abort()
	}
}

// RequireTable hanya meloloskan token meja (aksi tablet customer:
// mulai sesi, pesan, panggil pelayan).
func RequireTable() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenType, _ := c.Get("token_type")
		if tokenType != utils.TokenTypeTable {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("table access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireOwner khusus panel dev.
func RequireOwner() gin.HandlerFunc {
	return RequireStaffRole() // tanpa role tambahan: hanya owner yang lolos
}
