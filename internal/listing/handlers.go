package listing

import (
	"errors"
	"net/url"

	"github.com/mserg12/Major-LocNation/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware, optionalAuth fiber.Handler) {
	r.Get("/", func(c *fiber.Ctx) error {
		listings, err := svc.List(c.Context(), ParseFilter(queryValues(c)))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to get posts")
		}
		return c.JSON(listings)
	})

	r.Get("/:id", optionalAuth, func(c *fiber.Ctx) error {
		l, err := svc.Get(c.Context(), c.Params("id"), auth.UserID(c))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Post not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to get post")
		}
		return c.JSON(l)
	})

	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req CreateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.PostData == nil || req.PostDetail == nil {
			return fiber.NewError(fiber.StatusBadRequest, "postData and postDetail are required")
		}
		if len(req.PostData.Images) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "at least one image is required")
		}
		l, err := svc.Create(c.Context(), auth.UserID(c), req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to create post")
		}
		return c.JSON(l)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req UpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		l, err := svc.Update(c.Context(), c.Params("id"), auth.UserID(c), req)
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Post not found")
		}
		if errors.Is(err, ErrForbidden) {
			return fiber.NewError(fiber.StatusForbidden, "Not Authorized!")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to update post")
		}
		return c.JSON(l)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		err := svc.Delete(c.Context(), c.Params("id"), auth.UserID(c))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Post not found")
		}
		if errors.Is(err, ErrForbidden) {
			return fiber.NewError(fiber.StatusForbidden, "Not Authorized!")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete post")
		}
		return c.JSON(fiber.Map{"message": "Post deleted"})
	})
}

func queryValues(c *fiber.Ctx) url.Values {
	values := url.Values{}
	c.Context().QueryArgs().VisitAll(func(key, val []byte) {
		values.Add(string(key), string(val))
	})
	return values
}
