package handlers

import (
	"bloglist/internal/models"

	"github.com/gofiber/fiber/v2"
)

// blogView is the public shape of a blog.
type blogView struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	URL     string     `json:"url"`
	Author  string     `json:"author,omitempty"`
	Likes   int        `json:"likes"`
	OwnerID string     `json:"ownerId"`
	User    *ownerView `json:"user,omitempty"`
}

// ownerView is the owner projection attached to listed blogs.
type ownerView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// blogSummary is the blog projection attached to listed users.
type blogSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Author string `json:"author,omitempty"`
}

// userView is the public shape of a user. It never carries the password hash.
type userView struct {
	ID       string        `json:"id"`
	Username string        `json:"username"`
	Name     string        `json:"name"`
	BlogIDs  []string      `json:"blogIds"`
	Blogs    []blogSummary `json:"blogs"`
}

func newBlogView(b *models.Blog) blogView {
	v := blogView{
		ID:      b.ID,
		Title:   b.Title,
		URL:     b.URL,
		Author:  b.Author,
		Likes:   b.Likes,
		OwnerID: b.OwnerID,
	}
	if b.Owner != nil {
		v.User = &ownerView{ID: b.Owner.ID, Username: b.Owner.Username, Name: b.Owner.Name}
	}
	return v
}

func newUserView(u *models.User) userView {
	v := userView{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		BlogIDs:  u.BlogIDs(),
		Blogs:    make([]blogSummary, 0, len(u.Blogs)),
	}
	for _, b := range u.Blogs {
		v.Blogs = append(v.Blogs, blogSummary{ID: b.ID, Title: b.Title, URL: b.URL, Author: b.Author})
	}
	return v
}

// parseBody decodes a JSON request body. Malformed or missing bodies are a
// 400 rather than fiber's 422.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "request body is required")
	}
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed JSON body")
	}
	return nil
}
