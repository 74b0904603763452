package http

import (
	"net/http"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/http/handler"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/http/middleware"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	patientHandler      *handler.PatientHandler
	patientClaimHandler *handler.PatientClaimHandler
	vitalHandler        *handler.VitalHandler
	alertHandler        *handler.AlertHandler
	dashboardHandler    *handler.DashboardHandler
	institutionHandler  *handler.InstitutionHandler
	userAdminHandler    *handler.UserAdminHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	rateLimitMiddleware *middleware.RateLimitMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	patientHandler *handler.PatientHandler,
	patientClaimHandler *handler.PatientClaimHandler,
	vitalHandler *handler.VitalHandler,
	alertHandler *handler.AlertHandler,
	dashboardHandler *handler.DashboardHandler,
	institutionHandler *handler.InstitutionHandler,
	userAdminHandler *handler.UserAdminHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		patientHandler:      patientHandler,
		patientClaimHandler: patientClaimHandler,
		vitalHandler:        vitalHandler,
		alertHandler:        alertHandler,
		dashboardHandler:    dashboardHandler,
		institutionHandler:  institutionHandler,
		userAdminHandler:    userAdminHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
		rateLimitMiddleware: rateLimitMiddleware,
	}
}

// Setup registers every route. CORS wraps the whole router so preflight requests are
// answered even for paths that only register POST or PATCH.
func (r *Router) Setup() http.Handler {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public, rate limited per client IP)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.Use(r.rateLimitMiddleware.Limit)
	auth.HandleFunc("/register/patient", r.authHandler.RegisterPatient).Methods(http.MethodPost)
	auth.HandleFunc("/register/clinician", r.authHandler.RegisterClinician).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.Me).Methods(http.MethodGet)

	// Institution lookup for the registration forms (public)
	api.HandleFunc("/institutions", r.institutionHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/institutions/default", r.institutionHandler.GetDefault).Methods(http.MethodGet)

	// Patient routes (approved staff)
	patients := api.PathPrefix("/patients").Subrouter()
	patients.Use(r.authMiddleware.Authenticate)
	patients.Use(middleware.RequireStaff)
	patients.Use(middleware.RequireApproved)
	patients.HandleFunc("/unassigned", r.patientClaimHandler.ListUnassigned).Methods(http.MethodGet)
	patients.Handle("/{id}/claim", middleware.RequireRole(entity.RoleClinician)(http.HandlerFunc(r.patientClaimHandler.Claim))).Methods(http.MethodPost)
	patients.HandleFunc("/{id}/vitals", r.vitalHandler.ListForPatient).Methods(http.MethodGet)
	patients.HandleFunc("", r.patientHandler.List).Methods(http.MethodGet)
	patients.HandleFunc("", r.patientHandler.Create).Methods(http.MethodPost)
	patients.HandleFunc("/{id}", r.patientHandler.Get).Methods(http.MethodGet)

	// Alert routes (approved staff, the resolver narrows by role)
	alerts := api.PathPrefix("/alerts").Subrouter()
	alerts.Use(r.authMiddleware.Authenticate)
	alerts.Use(middleware.RequireStaff)
	alerts.Use(middleware.RequireApproved)
	alerts.HandleFunc("", r.alertHandler.List).Methods(http.MethodGet)
	alerts.HandleFunc("/{id}/resolve", r.alertHandler.Resolve).Methods(http.MethodPatch)

	// Dashboard routes (approved staff)
	dashboard := api.PathPrefix("/dashboard").Subrouter()
	dashboard.Use(r.authMiddleware.Authenticate)
	dashboard.Use(middleware.RequireStaff)
	dashboard.Use(middleware.RequireApproved)
	dashboard.HandleFunc("/stats", r.dashboardHandler.Stats).Methods(http.MethodGet)
	dashboard.HandleFunc("/top-performers", r.dashboardHandler.TopPerformers).Methods(http.MethodGet)

	// Patient self routes
	me := api.PathPrefix("/me").Subrouter()
	me.Use(r.authMiddleware.Authenticate)
	me.Use(middleware.RequirePatient)
	me.HandleFunc("/patient", r.patientHandler.GetMine).Methods(http.MethodGet)
	me.HandleFunc("/vitals", r.vitalHandler.ListMine).Methods(http.MethodGet)
	me.HandleFunc("/vitals", r.vitalHandler.RecordMine).Methods(http.MethodPost)
	me.HandleFunc("/alerts", r.alertHandler.ListMine).Methods(http.MethodGet)
	me.HandleFunc("/alerts/{id}/read", r.alertHandler.MarkMineRead).Methods(http.MethodPatch)

	// Admin routes (protected)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireApproved)

	// Institution management (admin)
	institutions := admin.PathPrefix("/institutions").Subrouter()
	institutions.Use(middleware.RequireAdmin)
	institutions.HandleFunc("", r.institutionHandler.List).Methods(http.MethodGet)
	institutions.HandleFunc("", r.institutionHandler.Create).Methods(http.MethodPost)
	institutions.HandleFunc("/{id}/default", r.institutionHandler.SetDefault).Methods(http.MethodPut)

	// Account approval and profile changes (admin, institution admin)
	users := admin.PathPrefix("/users").Subrouter()
	users.Use(middleware.RequireRole(entity.RoleAdmin, entity.RoleInstitutionAdmin))
	users.HandleFunc("/pending", r.userAdminHandler.ListPending).Methods(http.MethodGet)
	users.HandleFunc("/{id}/approval", r.userAdminHandler.SetApproval).Methods(http.MethodPatch)
	users.HandleFunc("/{id}/profile", r.userAdminHandler.UpdateProfile).Methods(http.MethodPatch)

	// Audit trail (admin)
	auditLogs := admin.PathPrefix("/audit-logs").Subrouter()
	auditLogs.Use(middleware.RequireAdmin)
	auditLogs.HandleFunc("", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	auditLogs.HandleFunc("/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	return r.corsMiddleware.Handle(r.router)
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
