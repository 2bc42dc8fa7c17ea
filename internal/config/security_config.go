// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic     SecurityLevel = iota // No authentication
	SecurityAccess                          // Any valid access token
	SecurityUser                            // Customer accounts only
	SecurityAgent                           // Agent accounts only
	SecuritySuperAdmin                      // Superadmin only
)

// EndpointSecurityConfig maps named API routes to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Auth - Public
	"auth.register.user":  SecurityPublic,
	"auth.register.agent": SecurityPublic,
	"auth.verify_email":   SecurityPublic,
	"auth.login":          SecurityPublic,

	// Profile - Access Protected
	"profile.get":    SecurityAccess,
	"profile.update": SecurityAccess,

	// Cars - Public catalog
	"cars.list":     SecurityPublic,
	"cars.featured": SecurityPublic,
	"cars.get":      SecurityPublic,
	"cars.reviews":  SecurityPublic,
	"cars.rating":   SecurityPublic,

	// Cars - Agent Protected
	"cars.create":       SecurityAgent,
	"cars.mine":         SecurityAgent,
	"cars.update":       SecurityAgent,
	"cars.availability": SecurityAgent,
	"cars.delete":       SecurityAgent,

	// Rentals
	"rentals.price":    SecurityPublic,
	"rentals.create":   SecurityUser,
	"rentals.mine":     SecurityUser,
	"rentals.overlap":  SecurityUser,
	"rentals.cancel":   SecurityUser,
	"rentals.agent":    SecurityAgent,
	"rentals.approve":  SecurityAgent,
	"rentals.reject":   SecurityAgent,
	"rentals.complete": SecurityAccess,
	"rentals.get":      SecurityAccess,
	"rentals.stats":    SecurityAccess,

	// Documents - Agent Protected
	"documents.upload": SecurityAgent,
	"documents.mine":   SecurityAgent,
	"documents.submit": SecurityAgent,
	"documents.delete": SecurityAgent,

	// Reviews
	"reviews.create": SecurityUser,
	"reviews.mine":   SecurityUser,
	"reviews.update": SecurityUser,
	"reviews.delete": SecurityUser,

	// Notifications - Access Protected
	"notifications.list":     SecurityAccess,
	"notifications.unread":   SecurityAccess,
	"notifications.count":    SecurityAccess,
	"notifications.read":     SecurityAccess,
	"notifications.read_all": SecurityAccess,
	"notifications.delete":   SecurityAccess,

	// Agent dashboard
	"agent.dashboard": SecurityAgent,

	// Admin - Superadmin Protected
	"admin.agents":            SecuritySuperAdmin,
	"admin.agents.pending":    SecuritySuperAdmin,
	"admin.agents.approve":    SecuritySuperAdmin,
	"admin.agents.reject":     SecuritySuperAdmin,
	"admin.agents.suspend":    SecuritySuperAdmin,
	"admin.agents.activate":   SecuritySuperAdmin,
	"admin.agents.request":    SecuritySuperAdmin,
	"admin.agents.documents":  SecuritySuperAdmin,
	"admin.documents.pending": SecuritySuperAdmin,
	"admin.documents.verify":  SecuritySuperAdmin,
	"admin.users":             SecuritySuperAdmin,
	"admin.users.active":      SecuritySuperAdmin,
	"admin.cars":              SecuritySuperAdmin,
	"admin.cars.delete":       SecuritySuperAdmin,
	"admin.rentals":           SecuritySuperAdmin,
	"admin.reviews.pending":   SecuritySuperAdmin,
	"admin.reviews.approve":   SecuritySuperAdmin,
	"admin.stats":             SecuritySuperAdmin,
	"admin.revenue":           SecuritySuperAdmin,

	// Files
	"uploads.get": SecurityPublic,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecuritySuperAdmin
}
