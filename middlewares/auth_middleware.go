package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/sanyogjadhav24/Krushi-Sarjana/configs"
	"github.com/sanyogjadhav24/Krushi-Sarjana/responses"
)

// AuthMiddleware validates the Bearer token issued by the auth subsystem
// and stores the caller's id and role in Locals. The webhook route is not
// behind this; the payment provider authenticates by signature instead.
func AuthMiddleware(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(responses.OrderResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "No auth token, access denied",
		})
	}

	bearerToken := strings.Split(authHeader, " ")
	if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
		return c.Status(fiber.StatusUnauthorized).JSON(responses.OrderResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid authorization header format",
		})
	}

	claims := &jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(bearerToken[1], claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(configs.EnvJWTSecret()), nil
	})
	if err != nil || !token.Valid {
		return c.Status(fiber.StatusUnauthorized).JSON(responses.OrderResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Token verification failed, access denied",
		})
	}

	userId, ok := (*claims)["id"].(string)
	if !ok || userId == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(responses.OrderResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "User ID not found in token",
		})
	}
	c.Locals("userId", userId)

	if role, ok := (*claims)["role"].(string); ok {
		c.Locals("role", role)
	}

	return c.Next()
}
