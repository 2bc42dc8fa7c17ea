package http

import (
	"net/http"

	"karhubty-backend/internal/service"
	"karhubty-backend/internal/security"
	"karhubty-backend/internal/storage"

	"github.com/gorilla/mux"
)

// Services bundles what the API exposes.
type Services struct {
	Auth         service.AuthService
	Users        service.UserService
	Cars         service.CarService
	Rentals      service.RentalService
	Documents    service.DocumentService
	Reviews      service.ReviewService
	Notification service.NotificationService
	Admin        service.AdminService
}

type RouterOptions struct {
	Tokens         security.TokenManager
	Storage        storage.StorageInterface
	AllowedOrigins []string
	// RateLimiter is optional.
	RateLimiter *RateLimiter
}

// NewRouter registers every /api/v1 route. Route names key into
// config.EndpointSecurityConfig; an unnamed route is superadmin-only.
// Global middleware wraps the router so it also sees unmatched requests and
// CORS preflights.
func NewRouter(svc Services, opts RouterOptions) http.Handler {
	v := NewValidator()
	authH := NewAuthHandler(svc.Auth, svc.Users, v)
	carH := NewCarHandler(svc.Cars, svc.Reviews, v)
	rentalH := NewRentalHandler(svc.Rentals, v)
	docH := NewDocumentHandler(svc.Documents, v)
	reviewH := NewReviewHandler(svc.Reviews, v)
	noteH := NewNotificationHandler(svc.Notification)
	adminH := NewAdminHandler(svc.Admin, svc.Cars, svc.Rentals, v)

	root := mux.NewRouter()
	root.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet).Name("health")

	if opts.Storage != nil {
		files := NewUploadHandler(opts.Storage)
		root.HandleFunc("/uploads/{key:.+}", files.Download).Methods(http.MethodGet).Name("uploads.get")
	}

	api := root.PathPrefix("/api/v1").Subrouter()
	api.Use(NewAuthMiddleware(opts.Tokens).Handler)

	// Auth
	api.HandleFunc("/auth/register/user", authH.RegisterUser).Methods(http.MethodPost).Name("auth.register.user")
	api.HandleFunc("/auth/register/agent", authH.RegisterAgent).Methods(http.MethodPost).Name("auth.register.agent")
	api.HandleFunc("/auth/verify-email", authH.VerifyEmail).Methods(http.MethodGet).Name("auth.verify_email")
	api.HandleFunc("/auth/login", authH.Login).Methods(http.MethodPost).Name("auth.login")
	api.HandleFunc("/profile", authH.GetProfile).Methods(http.MethodGet).Name("profile.get")
	api.HandleFunc("/profile", authH.UpdateProfile).Methods(http.MethodPut).Name("profile.update")

	// Cars
	api.HandleFunc("/cars", carH.List).Methods(http.MethodGet).Name("cars.list")
	api.HandleFunc("/cars", carH.Create).Methods(http.MethodPost).Name("cars.create")
	api.HandleFunc("/cars/featured", carH.Featured).Methods(http.MethodGet).Name("cars.featured")
	api.HandleFunc("/cars/mine", carH.Mine).Methods(http.MethodGet).Name("cars.mine")
	api.HandleFunc("/cars/{id:[0-9]+}", carH.Get).Methods(http.MethodGet).Name("cars.get")
	api.HandleFunc("/cars/{id:[0-9]+}", carH.Update).Methods(http.MethodPut).Name("cars.update")
	api.HandleFunc("/cars/{id:[0-9]+}", carH.Delete).Methods(http.MethodDelete).Name("cars.delete")
	api.HandleFunc("/cars/{id:[0-9]+}/availability", carH.SetAvailability).Methods(http.MethodPut).Name("cars.availability")
	api.HandleFunc("/cars/{id:[0-9]+}/reviews", carH.Reviews).Methods(http.MethodGet).Name("cars.reviews")
	api.HandleFunc("/cars/{id:[0-9]+}/rating", carH.Rating).Methods(http.MethodGet).Name("cars.rating")

	// Rentals
	api.HandleFunc("/rentals", rentalH.Create).Methods(http.MethodPost).Name("rentals.create")
	api.HandleFunc("/rentals/calculate-price", rentalH.CalculatePrice).Methods(http.MethodPost).Name("rentals.price")
	api.HandleFunc("/rentals/check-overlap", rentalH.CheckOverlap).Methods(http.MethodPost).Name("rentals.overlap")
	api.HandleFunc("/rentals/mine", rentalH.Mine).Methods(http.MethodGet).Name("rentals.mine")
	api.HandleFunc("/rentals/agent", rentalH.ForAgent).Methods(http.MethodGet).Name("rentals.agent")
	api.HandleFunc("/rentals/stats", rentalH.Stats).Methods(http.MethodGet).Name("rentals.stats")
	api.HandleFunc("/rentals/{id:[0-9]+}", rentalH.Get).Methods(http.MethodGet).Name("rentals.get")
	api.HandleFunc("/rentals/{id:[0-9]+}/approve", rentalH.Approve).Methods(http.MethodPut).Name("rentals.approve")
	api.HandleFunc("/rentals/{id:[0-9]+}/reject", rentalH.Reject).Methods(http.MethodPut).Name("rentals.reject")
	api.HandleFunc("/rentals/{id:[0-9]+}/cancel", rentalH.Cancel).Methods(http.MethodPut).Name("rentals.cancel")
	api.HandleFunc("/rentals/{id:[0-9]+}/complete", rentalH.Complete).Methods(http.MethodPut).Name("rentals.complete")

	// Documents
	api.HandleFunc("/documents/upload", docH.Upload).Methods(http.MethodPost).Name("documents.upload")
	api.HandleFunc("/documents/mine", docH.Mine).Methods(http.MethodGet).Name("documents.mine")
	api.HandleFunc("/documents/submit-for-review", docH.Submit).Methods(http.MethodPost).Name("documents.submit")
	api.HandleFunc("/documents/{id:[0-9]+}", docH.Delete).Methods(http.MethodDelete).Name("documents.delete")

	// Reviews
	api.HandleFunc("/reviews", reviewH.Create).Methods(http.MethodPost).Name("reviews.create")
	api.HandleFunc("/reviews/mine", reviewH.Mine).Methods(http.MethodGet).Name("reviews.mine")
	api.HandleFunc("/reviews/{id:[0-9]+}", reviewH.Update).Methods(http.MethodPut).Name("reviews.update")
	api.HandleFunc("/reviews/{id:[0-9]+}", reviewH.Delete).Methods(http.MethodDelete).Name("reviews.delete")

	// Notifications
	api.HandleFunc("/notifications", noteH.List).Methods(http.MethodGet).Name("notifications.list")
	api.HandleFunc("/notifications/unread", noteH.Unread).Methods(http.MethodGet).Name("notifications.unread")
	api.HandleFunc("/notifications/unread/count", noteH.Count).Methods(http.MethodGet).Name("notifications.count")
	api.HandleFunc("/notifications/read-all", noteH.MarkAllRead).Methods(http.MethodPut).Name("notifications.read_all")
	api.HandleFunc("/notifications/{id:[0-9]+}/read", noteH.MarkRead).Methods(http.MethodPut).Name("notifications.read")
	api.HandleFunc("/notifications/{id:[0-9]+}", noteH.Delete).Methods(http.MethodDelete).Name("notifications.delete")

	// Agent
	api.HandleFunc("/agent/dashboard", adminH.Dashboard).Methods(http.MethodGet).Name("agent.dashboard")

	// Admin
	api.HandleFunc("/admin/agents", adminH.ListAgents).Methods(http.MethodGet).Name("admin.agents")
	api.HandleFunc("/admin/agents/pending", adminH.PendingAgents).Methods(http.MethodGet).Name("admin.agents.pending")
	api.HandleFunc("/admin/agents/{id:[0-9]+}/approve", adminH.ApproveAgent).Methods(http.MethodPut).Name("admin.agents.approve")
	api.HandleFunc("/admin/agents/{id:[0-9]+}/reject", adminH.RejectAgent).Methods(http.MethodPut).Name("admin.agents.reject")
	api.HandleFunc("/admin/agents/{id:[0-9]+}/suspend", adminH.SuspendAgent).Methods(http.MethodPut).Name("admin.agents.suspend")
	api.HandleFunc("/admin/agents/{id:[0-9]+}/activate", adminH.ActivateAgent).Methods(http.MethodPut).Name("admin.agents.activate")
	api.HandleFunc("/admin/agents/{id:[0-9]+}/request-documents", adminH.RequestDocuments).Methods(http.MethodPost).Name("admin.agents.request")
	api.HandleFunc("/admin/agents/{id:[0-9]+}/documents", docH.ForAgent).Methods(http.MethodGet).Name("admin.agents.documents")
	api.HandleFunc("/admin/documents/pending", docH.Pending).Methods(http.MethodGet).Name("admin.documents.pending")
	api.HandleFunc("/admin/documents/{id:[0-9]+}/verify", docH.Verify).Methods(http.MethodPut).Name("admin.documents.verify")
	api.HandleFunc("/admin/users", adminH.ListUsers).Methods(http.MethodGet).Name("admin.users")
	api.HandleFunc("/admin/users/{id:[0-9]+}/status", adminH.SetUserActive).Methods(http.MethodPut).Name("admin.users.active")
	api.HandleFunc("/admin/cars", adminH.ListCars).Methods(http.MethodGet).Name("admin.cars")
	api.HandleFunc("/admin/cars/{id:[0-9]+}", adminH.DeleteCar).Methods(http.MethodDelete).Name("admin.cars.delete")
	api.HandleFunc("/admin/rentals", adminH.ListRentals).Methods(http.MethodGet).Name("admin.rentals")
	api.HandleFunc("/admin/reviews/pending", reviewH.Pending).Methods(http.MethodGet).Name("admin.reviews.pending")
	api.HandleFunc("/admin/reviews/{id:[0-9]+}/approve", reviewH.Approve).Methods(http.MethodPut).Name("admin.reviews.approve")
	api.HandleFunc("/admin/stats", adminH.Stats).Methods(http.MethodGet).Name("admin.stats")
	api.HandleFunc("/admin/revenue", adminH.Revenue).Methods(http.MethodGet).Name("admin.revenue")

	var h http.Handler = root
	if opts.RateLimiter != nil {
		h = opts.RateLimiter.Handler(h)
	}
	h = CORS(opts.AllowedOrigins)(h)
	h = AccessLog(h)
	h = RequestID(h)
	return Recover(h)
}
