package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const userIDKey = "user_id"

// authMiddleware accepts "Authorization: Bearer <jwt>" signed with HS256.
// The user id is the "sub" claim, or "uid" when sub is absent.
func (s *Server) authMiddleware() fiber.Handler {
	secret := []byte(s.opts.JWTSecret)
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing authorization token")
		}

		token, err := jwt.Parse(strings.TrimSpace(raw), func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}
		uid := claimString(claims, "sub")
		if uid == "" {
			uid = claimString(claims, "uid")
		}
		if uid == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
		}

		c.Locals(userIDKey, uid)
		return c.Next()
	}
}

func claimString(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return strings.TrimSpace(v)
}

func userID(c *fiber.Ctx) string {
	uid, _ := c.Locals(userIDKey).(string)
	return uid
}

// timeoutMiddleware attaches a deadline to the request context handlers
// pass downstream.
func (s *Server) timeoutMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if s.opts.RequestTimeout <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), s.opts.RequestTimeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func (s *Server) loggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status, _, _ = errorStatus(err)
		}

		level := s.log.Info
		switch {
		case status >= fiber.StatusInternalServerError:
			level = s.log.Error
		case status >= fiber.StatusBadRequest:
			level = s.log.Warn
		}
		level("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
			"ip", c.IP())
		return err
	}
}
