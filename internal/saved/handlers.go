package saved

import (
	"github.com/mserg12/Major-LocNation/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/save", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			PostID string `json:"postId"`
		}
		if err := c.BodyParser(&body); err != nil || body.PostID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "postId is required")
		}
		isSaved, err := svc.Toggle(c.Context(), auth.UserID(c), body.PostID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to save post")
		}
		message := "Post removed from saved list"
		if isSaved {
			message = "Post saved"
		}
		return c.JSON(fiber.Map{"message": message, "isSaved": isSaved})
	})

	r.Get("/profilePosts", authMiddleware, func(c *fiber.Ctx) error {
		userPosts, savedPosts, err := svc.ProfilePosts(c.Context(), auth.UserID(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to get profile posts")
		}
		return c.JSON(fiber.Map{"userPosts": userPosts, "savedPosts": savedPosts})
	})
}
