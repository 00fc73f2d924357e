package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/phamluong43-design/quan-ly-chung-thu-so/models"
)

const tokenLifetime = 24 * time.Hour

type AuthHandler struct {
	users  *models.UserStore
	secret string
	log    *logrus.Logger
}

func NewAuthHandler(users *models.UserStore, secret string, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{users: users, secret: secret, log: log}
}

func RegisterAuth(app *fiber.App, h *AuthHandler) {
	app.Post("/api/auth/login", h.login)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&in); err != nil || in.Username == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Thiếu tên đăng nhập hoặc mật khẩu"})
	}

	user, err := h.users.ActiveByUsername(in.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Tài khoản không tồn tại hoặc bị khóa"})
		}
		h.log.WithError(err).Error("login lookup failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Lỗi server khi đăng nhập"})
	}
	if !user.CheckPassword(in.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Mật khẩu không đúng"})
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       user.ID,
		"username": user.Username,
		"fullName": user.FullName,
		"role":     user.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(tokenLifetime).Unix(),
	})
	signed, err := token.SignedString([]byte(h.secret))
	if err != nil {
		h.log.WithError(err).Error("failed to sign token")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Lỗi server khi đăng nhập"})
	}

	return c.JSON(fiber.Map{
		"token": signed,
		"user": fiber.Map{
			"username": user.Username,
			"fullName": user.FullName,
			"role":     user.Role,
		},
	})
}

// Protect validates the bearer token and stores its claims in the request
// locals under "user".
func Protect(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Không tìm thấy token xác thực"})
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Token không hợp lệ hoặc đã hết hạn"})
		}
		c.Locals("user", token.Claims)
		return c.Next()
	}
}
