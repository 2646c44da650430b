package middleware

import (
	"strconv"

	"github.com/golang-jwt/jwt/v4"
)

const (
	jwtClaimUserID = "user_id"
	jwtClaimRole   = "role"
)

// claimUserID accepts a numeric or string user_id; anything else is 0.
func claimUserID(claims jwt.MapClaims) int {
	switch v := claims[jwtClaimUserID].(type) {
	case float64:
		if v == float64(int(v)) && v > 0 {
			return int(v)
		}
	case string:
		if id, err := strconv.Atoi(v); err == nil && id > 0 {
			return id
		}
	}
	return 0
}

func claimRole(claims jwt.MapClaims) string {
	role, _ := claims[jwtClaimRole].(string)
	return role
}
