package routes

import (
	"net/http"

	"github.com/agromap/agromap/app/controllers"
	"github.com/agromap/agromap/app/models"
	"github.com/agromap/agromap/pkg/ctx"
	"github.com/agromap/agromap/pkg/rbac"
	"github.com/agromap/agromap/pkg/router"
)

// Realtime holds the non-REST handlers mounted under /api.
type Realtime struct {
	CommentFeed   http.Handler // websocket
	CommentStream http.Handler // server-sent events
	GraphQL       http.Handler
}

// RegisterAPI mounts every AgroMap endpoint. Access is decided per group by
// an rbac rule; the caller's identity is attached earlier by
// middleware.Identify.
func RegisterAPI(r *router.Router, c *controllers.Controllers, rt Realtime) {
	w := ctx.Wrap

	r.Get("/health", "health", w(c.Health.Health))

	api := r.Group("/api")

	// Public.
	api.Get("/markets", "markets.index", w(c.Markets.Index))
	api.Get("/markets/{id}", "markets.show", w(c.Markets.Show))
	api.Get("/markets/{id}/products", "markets.products", w(c.Products.ForMarket))
	api.Get("/products", "products.index", w(c.Products.Index))
	api.Get("/products/category/{category}", "products.category", w(c.Products.ByCategory))
	api.Get("/product-bases", "product-bases.index", w(c.Bases.Index))
	api.Get("/search", "search", w(c.Search.Search))
	api.Get("/comments", "comments.index", w(c.Comments.Index))

	public := api.Group("/public/products")
	public.Get("/", "public.products.index", w(c.Products.Index))
	public.Get("/base", "public.products.base", w(c.Bases.Index))
	public.Get("/market/{id}", "public.products.market", w(c.Products.ForMarket))
	public.Get("/{id}", "public.products.show", w(c.Products.Show))

	if rt.GraphQL != nil {
		api.Post("/graphql", "graphql", rt.GraphQL.ServeHTTP)
	}
	if rt.CommentFeed != nil {
		api.Get("/ws/comments", "ws.comments", rt.CommentFeed.ServeHTTP)
	}
	if rt.CommentStream != nil {
		api.Get("/sse/comments", "sse.comments", rt.CommentStream.ServeHTTP)
	}

	auth := api.Group("/auth")
	auth.Post("/signup", "auth.signup", w(c.Auth.Signup))
	auth.Post("/signin", "auth.signin", w(c.Auth.Signin))
	auth.Post("/signout", "auth.signout", w(c.Auth.Signout))
	auth.Get("/session", "auth.session", w(c.Auth.Session), rbac.Require(rbac.Authenticated()))

	// Any signed-in user.
	member := api.Group("", rbac.Require(rbac.Authenticated()))
	member.Post("/comments", "comments.store", w(c.Comments.Store))
	member.Post("/comments/{id}/vote", "comments.vote", w(c.Comments.Vote))
	member.Get("/user/profile", "user.profile", w(c.Users.Profile))
	member.Put("/user/profile", "user.profile.update", w(c.Users.UpdateProfile))
	member.Get("/user/comments", "user.comments", w(c.Comments.Mine))
	member.Get("/user/stats", "user.stats", w(c.Users.Stats))
	member.Post("/upload", "upload", w(c.Uploads.Store))

	// Managers, scoped to their own market.
	manager := api.Group("", rbac.Require(rbac.Roles(models.RoleManager)))
	manager.Get("/market/my", "market.mine", w(c.Markets.Mine))
	manager.Put("/market/edit", "market.edit", w(c.Markets.Edit))
	manager.Post("/market/edit", "market.edit.post", w(c.Markets.Edit))
	manager.Delete("/market/delete", "market.delete", w(c.Markets.DeleteMine))
	manager.Get("/products/my", "products.mine", w(c.Products.Mine))
	manager.Post("/products/create", "products.store", w(c.Products.Store))
	manager.Put("/products/{id}", "products.update", w(c.Products.UpdateMine))
	manager.Delete("/products/{id}", "products.destroy", w(c.Products.DestroyMine))

	api.Get("/products/{id}", "products.show", w(c.Products.Show))

	admin := api.Group("/admin", rbac.Require(rbac.Roles(models.RoleAdmin)))
	admin.Get("/stats", "admin.stats", w(c.Admin.Stats))
	admin.Get("/products/base", "admin.bases.index", w(c.Bases.Index))
	admin.Post("/products/base", "admin.bases.store", w(c.Bases.Store))
	admin.Put("/products/base/{id}", "admin.bases.update", w(c.Bases.Update))
	admin.Delete("/products/base/{id}", "admin.bases.destroy", w(c.Bases.Destroy))
	admin.Get("/products/{id}", "admin.products.show", w(c.Products.Show))
	admin.Put("/products/{id}", "admin.products.update", w(c.Products.Update))
	admin.Delete("/products/{id}", "admin.products.destroy", w(c.Products.Destroy))
	admin.Get("/comments", "admin.comments.index", w(c.Comments.All))
	admin.Delete("/comments/{id}", "admin.comments.destroy", w(c.Comments.Destroy))
	admin.Get("/users", "admin.users.index", w(c.Users.Index))
	admin.Put("/users/{id}", "admin.users.update", w(c.Users.Update))
	admin.Delete("/users/{id}", "admin.users.destroy", w(c.Users.Destroy))
	admin.Delete("/markets/{id}", "admin.markets.destroy", w(c.Markets.Destroy))
}
