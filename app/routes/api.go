package routes

import (
	"fmt"
	"time"

	"github.com/shashiranjanraj/uniformhub/app/controllers"
	"github.com/shashiranjanraj/uniformhub/app/graph"
	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/app/services"
	"github.com/shashiranjanraj/uniformhub/pkg/ctx"
	"github.com/shashiranjanraj/uniformhub/pkg/graphql"
	"github.com/shashiranjanraj/uniformhub/pkg/middleware"
	"github.com/shashiranjanraj/uniformhub/pkg/rbac"
	"github.com/shashiranjanraj/uniformhub/pkg/router"
	"github.com/shashiranjanraj/uniformhub/pkg/ws"
)

// RegisterAPI mounts every JSON route plus the GraphQL catalog endpoint.
func RegisterAPI(r *router.Router, s *services.Services, hub *ws.Hub) error {
	w := ctx.Wrap
	can := rbac.RequirePermission

	auth := controllers.NewAuthController(s.Auth)
	users := controllers.NewUserController(s.Users)
	roles := controllers.NewRoleController(s.Roles)
	settings := controllers.NewSettingController(s.Settings)
	catalog := controllers.NewCatalogController(s.Catalog)
	schools := controllers.NewSchoolController(s.Schools, s.Geo)
	shops := controllers.NewShopController(s.Shops)
	listings := controllers.NewListingController(s.Listings)
	txs := controllers.NewTransactionController(s.Transactions, hub)
	storage := controllers.NewStorageController(s.Storage)
	emails := controllers.NewEmailController(s.Emails)

	schema, err := graph.NewCatalogSchema(s.Catalog)
	if err != nil {
		return fmt.Errorf("catalog schema: %w", err)
	}
	r.Handle("/graphql", "graphql", graphql.Handler(schema))

	api := r.Group("/api")

	// ── Auth ────────────────────────────────────────────────────────────────
	a := api.Group("/auth")
	a.Post("/sign-up/email", "auth.sign-up", w(auth.SignUp), rbac.Guest, middleware.RateLimit(10, time.Minute))
	a.Post("/sign-in/email", "auth.sign-in", w(auth.SignIn), middleware.RateLimit(10, time.Minute))
	a.Post("/sign-out", "auth.sign-out", w(auth.SignOut))
	a.Get("/get-session", "auth.session", w(auth.Session))

	api.Get("/me", "me", w(auth.Me), rbac.RequireAuth)

	// ── Public reads ────────────────────────────────────────────────────────
	api.Get("/branding", "branding", w(settings.Branding))
	api.Get("/catalog", "catalog.tree", w(catalog.Tree))
	api.Get("/catalog/categories", "catalog.categories", w(catalog.Categories))
	api.Get("/catalog/categories/{id}", "catalog.categories.show", w(catalog.Category))
	api.Get("/catalog/types", "catalog.types", w(catalog.Types))
	api.Get("/catalog/types/{id}", "catalog.types.show", w(catalog.Type))
	api.Get("/catalog/attributes", "catalog.attributes", w(catalog.Attributes))
	api.Get("/catalog/attributes/{id}", "catalog.attributes.show", w(catalog.Attribute))
	api.Get("/catalog/values", "catalog.values", w(catalog.Values))
	api.Get("/catalog/values/{id}", "catalog.values.show", w(catalog.Value))

	api.Get("/schools", "schools.index", w(schools.Index))
	api.Get("/schools/{id}", "schools.show", w(schools.Show))
	api.Get("/counties", "counties.index", w(schools.Counties))
	api.Get("/localities", "localities.index", w(schools.Localities))

	api.Get("/shops", "shops.index", w(shops.Index))
	api.Get("/shops/{id}", "shops.show", w(shops.Show))
	api.Get("/listings", "listings.index", w(listings.Index))
	api.Get("/listings/{id}", "listings.show", w(listings.Show))

	api.Get("/files/{id}", "files.show", w(storage.File))
	api.Get("/files/{id}/raw", "files.raw", w(storage.Raw))

	// ── Signed-in ───────────────────────────────────────────────────────────
	me := api.Group("", rbac.RequireAuth)
	me.Post("/shops", "shops.store", w(shops.Store))
	me.Put("/shops/{id}", "shops.update", w(shops.Update))
	me.Delete("/shops/{id}", "shops.destroy", w(shops.Destroy))

	me.Post("/listings", "listings.store", w(listings.Store))
	me.Put("/listings/{id}", "listings.update", w(listings.Update))
	me.Post("/listings/{id}/publish", "listings.publish", w(listings.Publish))
	me.Delete("/listings/{id}", "listings.destroy", w(listings.Destroy))

	me.Get("/transactions", "transactions.index", w(txs.Index))
	me.Post("/transactions", "transactions.store", w(txs.Store))
	me.Get("/transactions/{id}", "transactions.show", w(txs.Show))
	me.Post("/transactions/{id}/complete", "transactions.complete", w(txs.Complete))
	me.Post("/transactions/{id}/cancel", "transactions.cancel", w(txs.Cancel))
	me.Get("/transactions/{id}/messages", "transactions.messages", w(txs.Messages))
	me.Post("/transactions/{id}/messages", "transactions.messages.store", w(txs.PostMessage))
	me.Get("/transactions/{id}/ws", "transactions.ws", w(txs.Socket))
	me.Get("/transactions/{id}/events", "transactions.events", w(txs.Events))

	me.Post("/files", "files.store", w(storage.Upload), can(models.PermFilesUpload))
	me.Delete("/files/{id}", "files.destroy", w(storage.DestroyFile))

	// ── Admin ───────────────────────────────────────────────────────────────
	admin := api.Group("/admin", rbac.RequireAuth)

	u := admin.Group("/users")
	u.Get("", "admin.users.index", w(users.Index), can(models.PermUsersView))
	u.Get("/pending-count", "admin.users.pending", w(users.PendingCount), can(models.PermUsersView))
	u.Get("/{id}", "admin.users.show", w(users.Show), can(models.PermUsersView))
	um := u.Group("", can(models.PermUsersManage))
	um.Put("/{id}", "admin.users.update", w(users.Update))
	um.Delete("/{id}", "admin.users.destroy", w(users.Destroy))
	um.Post("/{id}/ban", "admin.users.ban", w(users.Ban))
	um.Post("/{id}/unban", "admin.users.unban", w(users.Unban))
	um.Put("/{id}/password", "admin.users.password", w(users.SetPassword))
	um.Post("/{id}/approve", "admin.users.approve", w(users.Approve))
	um.Post("/{id}/reject", "admin.users.reject", w(users.Reject))

	rg := admin.Group("/roles", can(models.PermRolesManage))
	rg.Get("", "admin.roles.index", w(roles.Index))
	rg.Get("/permissions", "admin.roles.permissions", w(roles.Permissions))
	rg.Post("", "admin.roles.store", w(roles.Store))
	rg.Get("/{id}", "admin.roles.show", w(roles.Show))
	rg.Put("/{id}", "admin.roles.update", w(roles.Update))
	rg.Delete("/{id}", "admin.roles.destroy", w(roles.Destroy))

	st := admin.Group("", can(models.PermSettingsManage))
	st.Get("/settings/approval", "admin.settings.approval", w(settings.Approval))
	st.Put("/settings/approval", "admin.settings.approval.update", w(settings.UpdateApproval))
	st.Put("/branding", "admin.branding.update", w(settings.UpdateBranding))

	cg := admin.Group("/catalog", can(models.PermCatalogManage))
	cg.Post("/categories", "admin.catalog.categories.store", w(catalog.StoreCategory))
	cg.Put("/categories/{id}", "admin.catalog.categories.update", w(catalog.UpdateCategory))
	cg.Delete("/categories/{id}", "admin.catalog.categories.destroy", w(catalog.DestroyCategory))
	cg.Post("/types", "admin.catalog.types.store", w(catalog.StoreType))
	cg.Put("/types/{id}", "admin.catalog.types.update", w(catalog.UpdateType))
	cg.Delete("/types/{id}", "admin.catalog.types.destroy", w(catalog.DestroyType))
	cg.Post("/attributes", "admin.catalog.attributes.store", w(catalog.StoreAttribute))
	cg.Put("/attributes/{id}", "admin.catalog.attributes.update", w(catalog.UpdateAttribute))
	cg.Delete("/attributes/{id}", "admin.catalog.attributes.destroy", w(catalog.DestroyAttribute))
	cg.Post("/values", "admin.catalog.values.store", w(catalog.StoreValue))
	cg.Put("/values/{id}", "admin.catalog.values.update", w(catalog.UpdateValue))
	cg.Delete("/values/{id}", "admin.catalog.values.destroy", w(catalog.DestroyValue))

	sg := admin.Group("/schools", can(models.PermSchoolsManage))
	sg.Post("", "admin.schools.store", w(schools.Store))
	sg.Post("/import", "admin.schools.import", w(schools.Import))
	sg.Put("/{id}", "admin.schools.update", w(schools.Update))
	sg.Delete("/{id}", "admin.schools.destroy", w(schools.Destroy))

	pg := admin.Group("/storage", can(models.PermStorageManage))
	pg.Get("", "admin.storage.index", w(storage.Providers))
	pg.Post("", "admin.storage.store", w(storage.StoreProvider))
	pg.Get("/{id}", "admin.storage.show", w(storage.Provider))
	pg.Put("/{id}", "admin.storage.update", w(storage.UpdateProvider))
	pg.Delete("/{id}", "admin.storage.destroy", w(storage.DestroyProvider))
	pg.Post("/{id}/activate", "admin.storage.activate", w(storage.Activate))

	eg := admin.Group("/emails", can(models.PermEmailsManage))
	eg.Get("/templates", "admin.emails.templates", w(emails.Templates))
	eg.Post("/templates", "admin.emails.templates.store", w(emails.StoreTemplate))
	eg.Get("/templates/{id}", "admin.emails.templates.show", w(emails.Template))
	eg.Put("/templates/{id}", "admin.emails.templates.update", w(emails.UpdateTemplate))
	eg.Delete("/templates/{id}", "admin.emails.templates.destroy", w(emails.DestroyTemplate))
	eg.Post("/templates/{id}/preview", "admin.emails.templates.preview", w(emails.Preview))
	eg.Get("/fragments", "admin.emails.fragments", w(emails.Fragments))
	eg.Post("/fragments", "admin.emails.fragments.store", w(emails.StoreFragment))
	eg.Get("/fragments/{id}", "admin.emails.fragments.show", w(emails.Fragment))
	eg.Put("/fragments/{id}", "admin.emails.fragments.update", w(emails.UpdateFragment))
	eg.Delete("/fragments/{id}", "admin.emails.fragments.destroy", w(emails.DestroyFragment))
	eg.Post("/send-test", "admin.emails.send-test", w(emails.SendTest))
	eg.Get("/logs", "admin.emails.logs", w(emails.Logs))

	return nil
}
