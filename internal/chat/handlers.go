package chat

import (
	"errors"

	"github.com/mserg12/Major-LocNation/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		chats, err := svc.ListChats(c.Context(), auth.UserID(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to get chats")
		}
		return c.JSON(chats)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		chat, err := svc.GetChat(c.Context(), c.Params("id"), auth.UserID(c))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Chat not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to get chat")
		}
		return c.JSON(chat)
	})

	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			ReceiverID string `json:"receiverId"`
		}
		if err := c.BodyParser(&body); err != nil || body.ReceiverID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "receiverId is required")
		}
		chat, err := svc.CreateChat(c.Context(), auth.UserID(c), body.ReceiverID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to create chat")
		}
		return c.JSON(chat)
	})

	r.Put("/read/:id", authMiddleware, func(c *fiber.Ctx) error {
		chat, err := svc.MarkRead(c.Context(), c.Params("id"), auth.UserID(c))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Chat not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to read chat")
		}
		return c.JSON(chat)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		err := svc.DeleteChat(c.Context(), c.Params("id"), auth.UserID(c))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Chat not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete chat")
		}
		return c.JSON(fiber.Map{"message": "Chat deleted"})
	})
}

// RegisterMessageRoutes mounts the message send endpoint, which lives
// under its own prefix.
func RegisterMessageRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/:chatId", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Text string `json:"text"`
		}
		if err := c.BodyParser(&body); err != nil || body.Text == "" {
			return fiber.NewError(fiber.StatusBadRequest, "text is required")
		}
		msg, err := svc.AddMessage(c.Context(), c.Params("chatId"), auth.UserID(c), body.Text)
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Chat not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to add message")
		}
		return c.JSON(msg)
	})
}
