package http

import (
	"net/http"

	"telehealth-portal/internal/delivery/http/handler"
	"telehealth-portal/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	doctorHandler       *handler.DoctorHandler
	appointmentHandler  *handler.AppointmentHandler
	videoHandler        *handler.VideoHandler
	analysisHandler     *handler.AnalysisHandler
	favoriteHandler     *handler.FavoriteHandler
	shareHandler        *handler.ShareHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	rateLimitMiddleware *middleware.RateLimitMiddleware
	loggerMiddleware    *middleware.LoggerMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	doctorHandler *handler.DoctorHandler,
	appointmentHandler *handler.AppointmentHandler,
	videoHandler *handler.VideoHandler,
	analysisHandler *handler.AnalysisHandler,
	favoriteHandler *handler.FavoriteHandler,
	shareHandler *handler.ShareHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	loggerMiddleware *middleware.LoggerMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		doctorHandler:       doctorHandler,
		appointmentHandler:  appointmentHandler,
		videoHandler:        videoHandler,
		analysisHandler:     analysisHandler,
		favoriteHandler:     favoriteHandler,
		shareHandler:        shareHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
		rateLimitMiddleware: rateLimitMiddleware,
		loggerMiddleware:    loggerMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)
	authProtected.HandleFunc("/me", r.authHandler.UpdateProfile).Methods(http.MethodPut)

	// Video rooms (protected, rate limited)
	videoRoutes := api.PathPrefix("/video").Subrouter()
	videoRoutes.Use(r.authMiddleware.Authenticate)
	videoRoutes.Use(r.rateLimitMiddleware.Limit)
	videoRoutes.HandleFunc("/rooms", r.videoHandler.CreateRoom).Methods(http.MethodPost)
	videoRoutes.HandleFunc("/debug", r.videoHandler.Debug).Methods(http.MethodGet)
	videoRoutes.HandleFunc("/{provider}/rooms", r.videoHandler.CreateRoom).Methods(http.MethodPost)

	// Appointments (protected)
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.Handle("", middleware.RequirePatient(http.HandlerFunc(r.appointmentHandler.Create))).Methods(http.MethodPost)
	appointments.HandleFunc("", r.appointmentHandler.ListMine).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}", r.appointmentHandler.Get).Methods(http.MethodGet)
	appointments.Handle("/{id}/join", r.rateLimitMiddleware.Limit(http.HandlerFunc(r.appointmentHandler.Join))).Methods(http.MethodPost)

	// Doctors (protected). Approval is checked per request against the
	// profile, so a freshly approved doctor needs no new token.
	doctors := api.PathPrefix("/doctors").Subrouter()
	doctors.Use(r.authMiddleware.Authenticate)
	doctors.HandleFunc("/register", r.doctorHandler.Register).Methods(http.MethodPost)
	doctors.HandleFunc("/me", r.doctorHandler.GetMine).Methods(http.MethodGet)
	doctors.HandleFunc("/appointments", r.appointmentHandler.ListForDoctor).Methods(http.MethodGet)
	doctors.HandleFunc("/patients", r.appointmentHandler.ListPatients).Methods(http.MethodGet)
	doctors.HandleFunc("/appointments/{id}/decision", r.appointmentHandler.Decide).Methods(http.MethodPost)

	// Analyses (protected)
	analyses := api.PathPrefix("/analyses").Subrouter()
	analyses.Use(r.authMiddleware.Authenticate)
	analyses.HandleFunc("", r.analysisHandler.List).Methods(http.MethodGet)
	analyses.HandleFunc("/stats", r.analysisHandler.Stats).Methods(http.MethodGet)
	analyses.HandleFunc("/{id:[0-9a-fA-F-]{36}}", r.analysisHandler.Get).Methods(http.MethodGet)
	analyses.Handle("/{disease}", r.rateLimitMiddleware.Limit(http.HandlerFunc(r.analysisHandler.Analyze))).Methods(http.MethodPost)

	// Favorites (protected)
	favorites := api.PathPrefix("/favorites").Subrouter()
	favorites.Use(r.authMiddleware.Authenticate)
	favorites.HandleFunc("", r.favoriteHandler.Create).Methods(http.MethodPost)
	favorites.HandleFunc("", r.favoriteHandler.List).Methods(http.MethodGet)
	favorites.HandleFunc("/{id}", r.favoriteHandler.Delete).Methods(http.MethodDelete)

	// Share links: issuing needs a token, opening one does not
	api.HandleFunc("/shares/{token}", r.shareHandler.Get).Methods(http.MethodGet)
	shares := api.PathPrefix("/shares").Subrouter()
	shares.Use(r.authMiddleware.Authenticate)
	shares.HandleFunc("", r.shareHandler.Create).Methods(http.MethodPost)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/doctors", r.doctorHandler.ListDoctors).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id}/status", r.doctorHandler.UpdateStatus).Methods(http.MethodPut)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.List).Methods(http.MethodGet)

	r.router.Use(r.loggerMiddleware.Handle)

	return r.router
}

// Handler wraps the routes with CORS outside the mux so preflight requests
// are answered even though no route matches OPTIONS.
func (r *Router) Handler() http.Handler {
	return r.corsMiddleware.Handle(r.Setup())
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
