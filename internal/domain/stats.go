package domain

// PlatformStats feeds the home page stats section.
type PlatformStats struct {
	ActiveCompanies int     `json:"active_companies"`
	OpenDeals       int     `json:"open_deals"`
	TotalRaisedMM   float64 `json:"total_raised_mm"` // USD millions across active companies
	Investments     int     `json:"investments"`
}

// StoreMetrics is returned by GET /v1/metrics/store. Values are cumulative
// since process start, read back from the Prometheus registry.
type StoreMetrics struct {
	Reads          int64   `json:"reads"`
	Writes         int64   `json:"writes"`
	ReadFailures   int64   `json:"read_failures"`
	WriteFailures  int64   `json:"write_failures"`
	RecordsCreated int64   `json:"records_created"`
	CacheHitRate   float64 `json:"cache_hit_rate"`
	Period         string  `json:"period"`
}
