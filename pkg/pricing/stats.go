package pricing

// GetAPIStats returns a copy of the current pricing API statistics
func GetAPIStats() map[string]map[string]int {
	PricingAPIStatsLock.RLock()
	defer PricingAPIStatsLock.RUnlock()

	statsCopy := make(map[string]map[string]int, len(PricingAPIStats))
	for region, stats := range PricingAPIStats {
		statsCopy[region] = make(map[string]int, len(stats))
		for key, value := range stats {
			statsCopy[region][key] = value
		}
	}
	return statsCopy
}

// updatePricingAPIStats updates the tracking statistics for Pricing API calls
func updatePricingAPIStats(region, statType string) {
	PricingAPIStatsLock.Lock()
	defer PricingAPIStatsLock.Unlock()

	if _, exists := PricingAPIStats[region]; !exists {
		PricingAPIStats[region] = map[string]int{
			"success": 0,
			"failure": 0,
			"cache":   0,
		}
	}
	PricingAPIStats[region][statType]++
}
