package domain

// ============================================================
// Page-level view models
// ============================================================

// DealListing is a deal joined with its company's display fields.
// Company fields stay empty when the company_id reference dangles.
type DealListing struct {
	Deal
	CompanyName   string `json:"company_name,omitempty"`
	CompanySector string `json:"company_sector,omitempty"`
	CompanyStage  string `json:"company_stage,omitempty"`
}

// DealBoard partitions deal listings the way the deals page renders them.
type DealBoard struct {
	Open   []DealListing `json:"open"`
	Closed []DealListing `json:"closed"`
}

// DealDetail is the full deal page payload.
type DealDetail struct {
	Deal      Deal     `json:"deal"`
	Company   *Company `json:"company,omitempty"`
	NDASigned bool     `json:"nda_signed"`
}

// CompanyBoard splits active companies into featured and regular rows.
type CompanyBoard struct {
	Featured []Company `json:"featured"`
	Others   []Company `json:"others"`
}

// DashboardInvestment is an investment joined with deal and company names.
type DashboardInvestment struct {
	Investment
	DealTitle   string `json:"deal_title,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
}

// Dashboard aggregates the current identity's holdings.
type Dashboard struct {
	Investments   []DashboardInvestment `json:"investments"`
	TotalInvested float64               `json:"total_invested"`
	TotalShares   float64               `json:"total_shares"`
	DealCount     int                   `json:"deal_count"`
}

// Profile is the profile page payload: identity plus its vehicles.
type Profile struct {
	User     User               `json:"user"`
	Entities []InvestmentEntity `json:"entities"`
}
