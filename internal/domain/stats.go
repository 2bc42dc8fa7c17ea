package domain

type PlatformStats struct {
	TotalUsers       int64 `json:"total_users"`
	TotalAgents      int64 `json:"total_agents"`
	PendingAgents    int64 `json:"pending_agents"`
	TotalCars        int64 `json:"total_cars"`
	TotalRentals     int64 `json:"total_rentals"`
	CompletedRentals int64 `json:"completed_rentals"`
	TotalRevenue     Money `json:"total_revenue"`
}

// AgentRevenue is one row of the per-agent earnings report.
type AgentRevenue struct {
	AgentID          int64  `json:"agent_id"`
	AgencyName       string `json:"agency_name"`
	Email            string `json:"email"`
	TotalCars        int64  `json:"total_cars"`
	TotalRentals     int64  `json:"total_rentals"`
	CompletedRentals int64  `json:"completed_rentals"`
	TotalEarnings    Money  `json:"total_earnings"`
}

// AgentDashboard is the revenue breakdown shown to a single agent.
type AgentDashboard struct {
	Agent          *Agent        `json:"agent"`
	TotalCars      int64         `json:"total_cars"`
	AvailableCars  int64         `json:"available_cars"`
	Rentals        RentalStats   `json:"rentals"`
	PendingRevenue Money         `json:"pending_revenue"`
	RecentRentals  []Rental      `json:"recent_rentals"`
	TopCars        []CarEarnings `json:"top_cars"`
}

type CarEarnings struct {
	CarID        int64  `json:"car_id"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	RentalCount  int64  `json:"rental_count"`
	TotalRevenue Money  `json:"total_revenue"`
}
