package service

import "strings"

// sponsoredURLPatterns are ad-routing markers Amazon never uses for
// organic results.
var sponsoredURLPatterns = []string{
	"/sspa/",
	"sp_atk",
	"sp_csd",
	"sp_btf",
	"sp_",
}

// adInfrastructureKeys are explicit ad-tracking fields; their presence
// alone marks a record as sponsored.
var adInfrastructureKeys = []string{
	"sponsoredLoggingUrl",
	"spAttributionURL",
	"adId",
	"clickTrackingParams",
}

// adMetadataKeys are DOM/metadata ad flags captured by the extraction probe.
var adMetadataKeys = []string{
	"data_ad_id",
	"data_ad",
	"data_sponsored",
}

// IsSponsored classifies a raw product record as sponsored or organic.
// Layered checks in priority order, first match wins; every signal is
// independently sufficient. Absent fields are treated as empty and the
// function never fails.
func IsSponsored(record map[string]interface{}) bool {
	if record == nil {
		return false
	}

	// 1. Explicit ad infrastructure (strongest signal)
	for _, key := range adInfrastructureKeys {
		if truthy(record[key]) {
			return true
		}
	}

	// 2. Ad-routing URL patterns
	url := strings.ToLower(stringField(record, "url"))
	for _, pattern := range sponsoredURLPatterns {
		if strings.Contains(url, pattern) {
			return true
		}
	}

	// 3. DOM / metadata indicators
	for _, key := range adMetadataKeys {
		if truthy(record[key]) {
			return true
		}
	}

	// 4. Visible disclosure text
	if strings.Contains(strings.ToLower(stringField(record, "labels")), "sponsored") {
		return true
	}

	// 5. Accessibility labels
	if strings.Contains(strings.ToLower(stringField(record, "aria_label")), "sponsored") {
		return true
	}

	return false
}

func stringField(record map[string]interface{}, key string) string {
	if v, ok := record[key].(string); ok {
		return v
	}
	return ""
}

func truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case float64:
		return val != 0
	default:
		return true
	}
}
