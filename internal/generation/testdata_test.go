package generation_test

import (
	"encoding/json"
	"fmt"
)

// itineraryJSON renders a well-formed model answer with n days.
func itineraryJSON(n int) string {
	days := make([]map[string]any, n)
	for i := range days {
		days[i] = map[string]any{
			"dayTitle": fmt.Sprintf("Day %d Theme", i+1),
			"activities": []map[string]string{
				{"time": "9:00 AM", "activity": "Senso-ji Temple", "description": "Morning visit.", "emoji": "⛩️"},
				{"time": "1:00 PM", "activity": "Ramen Lunch", "description": "Shoyu ramen.", "emoji": "🍜"},
			},
		}
	}
	b, _ := json.Marshal(map[string]any{
		"destination": "Tokyo",
		"coordinates": map[string]float64{"lat": 35.6762, "lng": 139.6503},
		"summary":     "History by day. Food by night.",
		"days":        days,
	})
	return string(b)
}
