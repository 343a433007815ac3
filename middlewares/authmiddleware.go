package middlewares

import (
	"net/http"
	"strings"

	"HADIRKU/config"
	"HADIRKU/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// RequireAuth validasi token Bearer lalu taruh user login di context
// sebagai "currentUser" (models.User) untuk dipakai controller.
func RequireAuth(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token tidak ditemukan"})
		return
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	claims := &config.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return config.JWT_KEY, nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token tidak valid atau kadaluarsa"})
		return
	}

	var user models.User
	if err := models.DB.WithContext(c.Request.Context()).
		Where("id = ?", claims.UserId).First(&user).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Sesi pengguna tidak valid"})
		return
	}

	c.Set("currentUser", user)
	c.Next()
}

// AdminOnly dipasang SETELAH RequireAuth.
func AdminOnly(c *gin.Context) {
	userData, exists := c.Get("currentUser")
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Sesi pengguna tidak valid"})
		return
	}
	currentUser := userData.(models.User)
	if !currentUser.IsAdmin() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Khusus admin"})
		return
	}
	c.Next()
}
