package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tabel-bot/internal/application/dto"
)

// adminChecker актуальный статус администратора; реализуется personnel.Directory.
type adminChecker interface {
	IsAdmin(ctx context.Context, id int64) (bool, error)
	IsRoot(id int64) bool
}

// permissionChecker права командира; реализуется permissions.Service.
type permissionChecker interface {
	Check(ctx context.Context, userID int64, flag string) bool
}

// RequirePermission проверяет, что владелец токена всё ещё администратор и
// у него есть право flag. Главные администраторы проходят без проверки прав.
// Ставится после AuthMiddleware.
//
//   - 401 нет user_id в контексте;
//   - 503 сбой хранилища при проверке;
//   - 403 права сняты после выдачи токена.
func RequirePermission(flag string, admins adminChecker, perms permissionChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "в токене нет user_id",
			})
		}

		ok, err := admins.IsAdmin(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "ACCESS_CHECK_FAILED",
				Message: "не удалось проверить права, попробуйте позже",
			})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "пользователь не является администратором",
			})
		}
		if flag != "" && !admins.IsRoot(userID) && !perms.Check(c.Context(), userID, flag) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "PERMISSION_DENIED",
				Message: "нет права " + flag,
			})
		}
		return c.Next()
	}
}
