// Package domain defines the core entities for the investor portal.
// These models are independent of the backing record service and represent
// the canonical data structures used throughout the portal BFA.
package domain

// ============================================================
// Companies
// ============================================================

// Company represents a portfolio company. Read-mostly reference data.
type Company struct {
	ID              string   `json:"id,omitempty"`
	Name            string   `json:"name"`
	Sector          string   `json:"sector,omitempty"`
	Stage           string   `json:"stage,omitempty"`
	Description     string   `json:"description,omitempty"`
	LongDescription string   `json:"long_description,omitempty"`
	LogoURL         string   `json:"logo_url,omitempty"`
	Headquarters    string   `json:"headquarters,omitempty"`
	Website         string   `json:"website,omitempty"`
	FoundedYear     int      `json:"founded_year,omitempty"`
	TeamSize        int      `json:"team_size,omitempty"`
	TotalRaised     float64  `json:"total_raised,omitempty"` // USD millions
	Status          string   `json:"status,omitempty"`
	IsFeatured      bool     `json:"is_featured,omitempty"`
	KeyInvestors    []string `json:"key_investors,omitempty"`
	CreatedDate     string   `json:"created_date,omitempty"`
	CreatedBy       string   `json:"created_by,omitempty"`
}

// CompanyStatusActive marks companies shown on the portfolio page.
const CompanyStatusActive = "active"

// ============================================================
// Deals
// ============================================================

// Deal statuses.
const (
	DealStatusOpen            = "open"
	DealStatusClosingSoon     = "closing_soon"
	DealStatusClosed          = "closed"
	DealStatusFullySubscribed = "fully_subscribed"
)

// AccessLevelPublic marks deals visible to unauthenticated visitors.
// A missing access_level is treated as public.
const AccessLevelPublic = "public"

// Deal represents a primary or secondary offering. company_id is a weak
// reference: the company may be absent and readers must tolerate that.
type Deal struct {
	ID                  string   `json:"id,omitempty"`
	CompanyID           string   `json:"company_id,omitempty"`
	Title               string   `json:"title"`
	DealType            string   `json:"deal_type,omitempty"` // Primary, Secondary
	Status              string   `json:"status,omitempty"`
	AccessLevel         string   `json:"access_level,omitempty"`
	MinimumInvestment   float64  `json:"minimum_investment,omitempty"`
	ImpliedValuation    float64  `json:"implied_valuation,omitempty"` // USD millions
	SharePrice          float64  `json:"share_price,omitempty"`
	LastRoundPrice      float64  `json:"last_round_price,omitempty"`
	ClosingDate         string   `json:"closing_date,omitempty"` // YYYY-MM-DD
	AllocationRemaining float64  `json:"allocation_remaining,omitempty"`
	Highlights          []string `json:"highlights,omitempty"`
	CreatedDate         string   `json:"created_date,omitempty"`
	CreatedBy           string   `json:"created_by,omitempty"`
}

// IsOpen reports whether the deal still accepts investments.
func (d Deal) IsOpen() bool {
	return d.Status == DealStatusOpen || d.Status == DealStatusClosingSoon
}

// IsPublic reports whether unauthenticated visitors may view the deal.
func (d Deal) IsPublic() bool {
	return d.AccessLevel == "" || d.AccessLevel == AccessLevelPublic
}

// ============================================================
// Investments
// ============================================================

// Investment is created per user action. There is no update or delete path;
// investment records are append-only.
type Investment struct {
	ID             string  `json:"id,omitempty"`
	DealID         string  `json:"deal_id,omitempty"`
	CompanyID      string  `json:"company_id,omitempty"`
	Amount         float64 `json:"amount"`
	Shares         float64 `json:"shares,omitempty"`
	SharePrice     float64 `json:"share_price,omitempty"`
	InvestmentDate string  `json:"investment_date,omitempty"`
	Status         string  `json:"status,omitempty"`
	CreatedDate    string  `json:"created_date,omitempty"`
	CreatedBy      string  `json:"created_by,omitempty"`
}

// InvestmentRequest is the payload to invest in a deal.
type InvestmentRequest struct {
	Amount   float64 `json:"amount"`
	EntityID string  `json:"entity_id,omitempty"`
}

// ============================================================
// Investment entities (vehicles)
// ============================================================

// Investment entity types.
const (
	EntityTypePersonal    = "Personal"
	EntityTypeLLC         = "LLC"
	EntityTypeCorporation = "Corporation"
	EntityTypeTrust       = "Trust"
	EntityTypePartnership = "Partnership"
)

// InvestmentEntity is a legal vehicle a user invests through.
// One user may own many.
type InvestmentEntity struct {
	ID                string `json:"id,omitempty"`
	EntityType        string `json:"entity_type"`
	EntityName        string `json:"entity_name"`
	TaxID             string `json:"tax_id,omitempty"`
	Address           string `json:"address,omitempty"`
	AuthorizedSigners string `json:"authorized_signers,omitempty"`
	CreatedDate       string `json:"created_date,omitempty"`
	CreatedBy         string `json:"created_by,omitempty"`
}

// ValidEntityType reports whether t is one of the supported vehicle types.
func ValidEntityType(t string) bool {
	switch t {
	case EntityTypePersonal, EntityTypeLLC, EntityTypeCorporation,
		EntityTypeTrust, EntityTypePartnership:
		return true
	}
	return false
}

// ============================================================
// NDAs
// ============================================================

// NDA is a per-user, per-deal confidentiality acknowledgment. At most one
// per (deal_id, user_email) by convention; the service returns the existing
// record on re-sign rather than creating a duplicate.
type NDA struct {
	ID           string `json:"id,omitempty"`
	DealID       string `json:"deal_id"`
	UserEmail    string `json:"user_email"`
	AgreedAt     string `json:"agreed_at,omitempty"`
	TermsVersion string `json:"terms_version,omitempty"`
	CreatedDate  string `json:"created_date,omitempty"`
	CreatedBy    string `json:"created_by,omitempty"`
}

// ============================================================
// Access requests
// ============================================================

// AccessRequest is submitted from the request-access page. Write-only from
// the portal's perspective.
type AccessRequest struct {
	ID                  string   `json:"id,omitempty"`
	FullName            string   `json:"full_name"`
	Email               string   `json:"email"`
	InvestorType        string   `json:"investor_type,omitempty"`
	AccreditationStatus string   `json:"accreditation_status,omitempty"`
	InvestmentCapacity  string   `json:"investment_capacity,omitempty"`
	AreasOfInterest     []string `json:"areas_of_interest,omitempty"`
	Message             string   `json:"message,omitempty"`
	CreatedDate         string   `json:"created_date,omitempty"`
	CreatedBy           string   `json:"created_by,omitempty"`
}
