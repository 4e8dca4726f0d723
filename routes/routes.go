package routes

import (
	"net/http"
	"strings"

	"curemedix/admin"
	"curemedix/auth"
	"curemedix/banners"
	"curemedix/cart"
	"curemedix/categories"
	"curemedix/medicines"
	"curemedix/middleware"
	"curemedix/pay"
	"curemedix/ratelim"
	"curemedix/users"

	"github.com/julienschmidt/httprouter"
)

func AddAuthRoutes(router *httprouter.Router, svc *auth.Service, rl *ratelim.RateLimiter) {
	router.POST("/jwt", rl.Limit(svc.Issue))
}

func AddMedicineRoutes(router *httprouter.Router, svc *medicines.Service) {
	router.GET("/medicines", svc.List)
	router.GET("/medicines/:email", svc.BySeller)
	router.GET("/searchMedicines", svc.Search)
	router.POST("/medicines", svc.Create)
}

func AddCategoryRoutes(router *httprouter.Router, svc *categories.Service, mw *middleware.Auth) {
	adminOnly := middleware.Chain(mw.Authenticate, mw.RequireRole("admin"))

	router.GET("/categories", svc.List)
	router.GET("/categories/:id", svc.Get)
	router.POST("/categories", adminOnly(svc.Create))
	// httprouter refuses a :id wildcard next to the static addCount
	// segment, so both PATCH shapes share one catch-all and split here.
	router.PATCH("/categories/*path", categoryPatch(adminOnly(svc.Update), svc.AddCount))
	router.DELETE("/categories/:id", adminOnly(svc.Delete))

	router.GET("/categoryImages", svc.ListImages)
	router.POST("/categoryImages", adminOnly(svc.CreateImage))
	router.PATCH("/categoryImages/:name", adminOnly(svc.UpsertImage))
}

// categoryPatch dispatches PATCH /categories/addCount/:categoryName to
// addCount and PATCH /categories/:id to update. Anything deeper is a 404.
func categoryPatch(update, addCount httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		path := strings.Trim(ps.ByName("path"), "/")
		if name, ok := strings.CutPrefix(path, "addCount/"); ok {
			if name == "" || strings.Contains(name, "/") {
				http.NotFound(w, r)
				return
			}
			addCount(w, r, httprouter.Params{{Key: "categoryName", Value: name}})
			return
		}
		if path == "" || strings.Contains(path, "/") {
			http.NotFound(w, r)
			return
		}
		update(w, r, httprouter.Params{{Key: "id", Value: path}})
	}
}

func AddBannerRoutes(router *httprouter.Router, svc *banners.Service, mw *middleware.Auth) {
	adminOnly := middleware.Chain(mw.Authenticate, mw.RequireRole("admin"))

	router.GET("/banners", svc.List)
	router.POST("/banners", svc.Create)
	router.GET("/banners/seller/:email", svc.BySeller)
	router.PATCH("/banners/:id", adminOnly(svc.SetActive))
	router.DELETE("/banners/:id", adminOnly(svc.Delete))
}

func AddUserRoutes(router *httprouter.Router, svc *users.Service, mw *middleware.Auth) {
	adminOnly := middleware.Chain(mw.Authenticate, mw.RequireRole("admin"))

	router.GET("/users", adminOnly(svc.List))
	router.POST("/users", svc.Create)

	// Ownership runs before any role logic: a valid token for user A can
	// never probe user B's role.
	router.GET("/users/admin/:email",
		middleware.Chain(mw.Authenticate, middleware.RequireOwner("email"))(svc.IsAdmin))
	router.GET("/users/seller/:email",
		middleware.Chain(mw.Authenticate, middleware.RequireOwner("email"))(svc.IsSeller))

	router.PATCH("/users/admin/:id", adminOnly(svc.MakeAdmin))
	router.PATCH("/users/makeSeller/:id", adminOnly(svc.MakeSeller))
	router.PATCH("/users/makeUser/:id", adminOnly(svc.MakeUser))
	router.DELETE("/users/:id", adminOnly(svc.Delete))
}

func AddCartRoutes(router *httprouter.Router, svc *cart.Service) {
	router.GET("/carts", svc.ListByOwner)
	router.POST("/carts", svc.Add)
	router.DELETE("/carts/:id", svc.Remove)
	router.DELETE("/clearCarts", svc.ClearByOwner)
}

func AddPayRoutes(router *httprouter.Router, svc *pay.Service, mw *middleware.Auth, idem *middleware.Idempotency, rl *ratelim.RateLimiter) {
	adminOnly := middleware.Chain(mw.Authenticate, mw.RequireRole("admin"))

	router.POST("/create-payment-intent", rl.Limit(svc.CreatePaymentIntent))
	router.POST("/payments",
		middleware.Chain(rl.Limit, mw.Authenticate, idem.Handle)(svc.Record))
	router.GET("/payments/:email",
		middleware.Chain(mw.Authenticate, middleware.RequireOwner("email"))(svc.ListByOwner))
	router.GET("/payments/:email/receipt/:transactionId",
		middleware.Chain(mw.Authenticate, middleware.RequireOwner("email"))(svc.Receipt))

	router.GET("/manage-payments", adminOnly(svc.ManageList))
	router.PATCH("/manage-payments/:transactionId", adminOnly(svc.Settle))
}

func AddAdminRoutes(router *httprouter.Router, svc *admin.Service, mw *middleware.Auth) {
	router.GET("/admin-stats",
		middleware.Chain(mw.Authenticate, mw.RequireRole("admin"))(svc.Stats))
}
