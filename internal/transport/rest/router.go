package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/servicehub/admin-backend/internal/activitylog"
	"github.com/servicehub/admin-backend/internal/auth"
	"github.com/servicehub/admin-backend/internal/booking"
	"github.com/servicehub/admin-backend/internal/module"
	"github.com/servicehub/admin-backend/internal/permission"
	"github.com/servicehub/admin-backend/internal/registration"
	"github.com/servicehub/admin-backend/internal/role"
	"github.com/servicehub/admin-backend/internal/transport/middleware"
	"github.com/servicehub/admin-backend/internal/transport/swagger"
	"github.com/servicehub/admin-backend/internal/user"
)

// Module names used by the permission gates. They must match the rows seeded
// into the modules table.
const (
	ModuleDashboard     = "dashboard"
	ModuleModules       = "modules"
	ModuleRoles         = "roles"
	ModuleStaff         = "staff"
	ModuleRegistrations = "registrations"
	ModuleBookings      = "bookings"
	ModulePayments      = "payments"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	moduleHandler *module.Handler,
	roleHandler *role.Handler,
	permissionHandler *permission.Handler,
	registrationHandler *registration.Handler,
	bookingHandler *booking.Handler,
	staffHandler *user.Handler,
	activityHandler *activitylog.Handler,
	checker middleware.CapabilityChecker,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.Post("/refresh", authHandler.RefreshToken)
			sr.Post("/logout", authHandler.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			// The caller's own permission matrix needs no gate.
			pr.Get("/permissions/matrix", permissionHandler.Matrix)
			pr.Get("/permissions/check", permissionHandler.Check)

			pr.With(gate(checker, ModuleDashboard, permission.CapabilityView)).
				Get("/activity/{entity}/{id}", activityHandler.ListEntityActivity)

			pr.Route("/modules", func(mr chi.Router) {
				mr.With(gate(checker, ModuleModules, permission.CapabilityView)).Get("/", moduleHandler.ListModules)
				mr.With(gate(checker, ModuleModules, permission.CapabilityView)).Get("/{id}/children", moduleHandler.GetChildren)
				mr.With(gate(checker, ModuleModules, permission.CapabilityAdd)).Post("/", moduleHandler.CreateModule)
				mr.With(gate(checker, ModuleModules, permission.CapabilityEdit)).Patch("/{id}/parent", moduleHandler.ReparentModule)
				mr.With(gate(checker, ModuleModules, permission.CapabilityDelete)).Delete("/{id}", moduleHandler.DeleteModule)
			})

			pr.Route("/roles", func(rr chi.Router) {
				rr.With(gate(checker, ModuleRoles, permission.CapabilityView)).Get("/", roleHandler.ListRoles)
				rr.With(gate(checker, ModuleRoles, permission.CapabilityAdd)).Post("/", roleHandler.CreateRole)
				rr.With(gate(checker, ModuleRoles, permission.CapabilityEdit)).Patch("/{id}", roleHandler.UpdateRole)
				rr.With(gate(checker, ModuleRoles, permission.CapabilityEdit)).Patch("/{id}/toggle", roleHandler.ToggleRoleActive)
				rr.With(gate(checker, ModuleRoles, permission.CapabilityDelete)).Delete("/{id}", roleHandler.DeleteRole)
			})

			pr.Route("/permissions", func(per chi.Router) {
				per.With(gate(checker, ModuleRoles, permission.CapabilityView)).Get("/roles/{id}", permissionHandler.GetRolePermissions)
				per.With(gate(checker, ModuleRoles, permission.CapabilityEdit)).Put("/roles/{id}", permissionHandler.SetRolePermissions)
				per.With(gate(checker, ModuleStaff, permission.CapabilityView)).Get("/users/{id}", permissionHandler.GetUserPermissions)
				per.With(gate(checker, ModuleStaff, permission.CapabilityEdit)).Put("/users/{id}", permissionHandler.SetUserOverride)
			})

			pr.Route("/staff", func(sr chi.Router) {
				sr.With(gate(checker, ModuleStaff, permission.CapabilityView)).Get("/", staffHandler.ListStaff)
				sr.With(gate(checker, ModuleStaff, permission.CapabilityView)).Get("/{id}", staffHandler.GetStaff)
				sr.With(gate(checker, ModuleStaff, permission.CapabilityAdd)).Post("/", staffHandler.CreateStaff)
				sr.With(gate(checker, ModuleStaff, permission.CapabilityEdit)).Patch("/{id}/toggle", staffHandler.ToggleStaffActive)
				sr.With(gate(checker, ModuleStaff, permission.CapabilityEdit)).Patch("/{id}/role", staffHandler.AssignRole)
			})

			pr.Route("/registrations", func(rr chi.Router) {
				rr.With(gate(checker, ModuleRegistrations, permission.CapabilityView)).Get("/", registrationHandler.ListRegistrations)
				rr.With(gate(checker, ModuleRegistrations, permission.CapabilityView)).Get("/{id}", registrationHandler.GetRegistration)
				rr.With(gate(checker, ModuleRegistrations, permission.CapabilityView)).Get("/{id}/progress", registrationHandler.GetProgress)
				rr.With(gate(checker, ModuleRegistrations, permission.CapabilityView)).Get("/{id}/history", registrationHandler.GetStatusHistory)
				rr.With(gate(checker, ModuleRegistrations, permission.CapabilityAdd)).Post("/", registrationHandler.CreateRegistration)
				rr.With(gate(checker, ModuleRegistrations, permission.CapabilityEdit)).Patch("/{id}/steps/{step}", registrationHandler.CompleteStep)
				rr.With(gate(checker, ModuleRegistrations, permission.CapabilityEdit)).Patch("/{id}/status", registrationHandler.UpdateStatus)
				rr.With(gate(checker, ModuleRegistrations, permission.CapabilityEdit)).Patch("/{id}/police-verification", registrationHandler.UpdatePoliceVerification)
				rr.With(gate(checker, ModuleRegistrations, permission.CapabilityEdit)).Patch("/{id}/salary-status", registrationHandler.UpdateSalaryStatus)
				rr.With(gate(checker, ModuleRegistrations, permission.CapabilityEdit)).Post("/{id}/finalize", registrationHandler.FinalizeRegistration)
			})

			pr.Route("/bookings", func(br chi.Router) {
				br.With(gate(checker, ModuleBookings, permission.CapabilityView)).Get("/", bookingHandler.ListBookings)
				br.With(gate(checker, ModuleBookings, permission.CapabilityView)).Get("/{id}", bookingHandler.GetBooking)
				br.With(gate(checker, ModuleBookings, permission.CapabilityView)).Get("/reference/{reference}", bookingHandler.GetBookingByReference)
				br.With(gate(checker, ModuleBookings, permission.CapabilityAdd)).Post("/", bookingHandler.CreateBooking)
				br.With(gate(checker, ModuleBookings, permission.CapabilityEdit)).Patch("/{id}/status", bookingHandler.UpdateBookingStatus)
				br.With(gate(checker, ModulePayments, permission.CapabilityAdd)).Post("/{id}/payment", bookingHandler.RecordPayment)
			})
		})
	})
}

func gate(checker middleware.CapabilityChecker, moduleName string, capability permission.Capability) func(http.Handler) http.Handler {
	return middleware.CapabilityGate(checker, moduleName, string(capability))
}
