package handlers

import (
	"bloglist/internal/middleware"
	"bloglist/internal/services"

	"github.com/gofiber/fiber/v2"
)

// BlogHandler handles HTTP requests for blogs.
type BlogHandler struct {
	service *services.BlogService
}

// NewBlogHandler creates a new BlogHandler.
func NewBlogHandler(service *services.BlogService) *BlogHandler {
	return &BlogHandler{service: service}
}

// RegisterRoutes registers the blog routes. Creation and deletion go through
// authRequired; reads and likes updates are public.
func (h *BlogHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	blogRoutes := router.Group("/blogs")
	blogRoutes.Get("/", h.HandleGetBlogs)
	blogRoutes.Get("/:id", h.HandleGetBlogByID)
	blogRoutes.Post("/", authRequired, h.HandleCreateBlog)
	blogRoutes.Put("/:id", h.HandleUpdateLikes)
	blogRoutes.Delete("/:id", authRequired, h.HandleDeleteBlog)
}

// HandleGetBlogs lists all blogs with their owner.
func (h *BlogHandler) HandleGetBlogs(c *fiber.Ctx) error {
	blogs, err := h.service.ListBlogs(c.UserContext())
	if err != nil {
		return err
	}
	views := make([]blogView, 0, len(blogs))
	for i := range blogs {
		views = append(views, newBlogView(&blogs[i]))
	}
	return c.JSON(views)
}

// HandleGetBlogByID retrieves a single blog by its ID.
func (h *BlogHandler) HandleGetBlogByID(c *fiber.Ctx) error {
	blog, err := h.service.GetBlog(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(newBlogView(blog))
}

// HandleCreateBlog creates a blog owned by the authenticated caller.
func (h *BlogHandler) HandleCreateBlog(c *fiber.Ctx) error {
	var in services.CreateBlogInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	blog, err := h.service.CreateBlog(c.UserContext(), middleware.IdentityFrom(c), in)
	if err != nil {
		return err
	}
	return c.JSON(newBlogView(blog))
}

// HandleUpdateLikes sets the like counter of a blog.
func (h *BlogHandler) HandleUpdateLikes(c *fiber.Ctx) error {
	var in services.UpdateLikesInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	blog, err := h.service.UpdateLikes(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(newBlogView(blog))
}

// HandleDeleteBlog deletes a blog if the caller owns it.
func (h *BlogHandler) HandleDeleteBlog(c *fiber.Ctx) error {
	if err := h.service.DeleteBlog(c.UserContext(), middleware.IdentityFrom(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
