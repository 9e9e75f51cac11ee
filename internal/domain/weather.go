package domain

// Weather is the current conditions at an itinerary's coordinates.
// A nil *Weather means enrichment did not succeed.
type Weather struct {
	Temperature float64 `json:"temperature"` // °C
	WeatherCode int     `json:"weatherCode"` // WMO code
	WindSpeed   float64 `json:"windSpeed"`   // km/h
}

// Condition is a human-readable rendering of a WMO weather code.
type Condition struct {
	Label string `json:"label"`
	Emoji string `json:"emoji"`
}

// Describe maps the WMO weather interpretation code to a label.
// Unknown codes map to "Unknown".
func (w Weather) Describe() Condition {
	switch w.WeatherCode {
	case 0:
		return Condition{"Clear sky", "☀️"}
	case 1:
		return Condition{"Mainly clear", "🌤️"}
	case 2:
		return Condition{"Partly cloudy", "⛅"}
	case 3:
		return Condition{"Overcast", "☁️"}
	case 45, 48:
		return Condition{"Fog", "🌫️"}
	case 51, 53, 55:
		return Condition{"Drizzle", "🌦️"}
	case 56, 57:
		return Condition{"Freezing drizzle", "🌧️"}
	case 61, 63, 65:
		return Condition{"Rain", "🌧️"}
	case 66, 67:
		return Condition{"Freezing rain", "🌧️"}
	case 71, 73, 75, 77:
		return Condition{"Snow", "❄️"}
	case 80, 81, 82:
		return Condition{"Rain showers", "🌦️"}
	case 85, 86:
		return Condition{"Snow showers", "🌨️"}
	case 95:
		return Condition{"Thunderstorm", "⛈️"}
	case 96, 99:
		return Condition{"Thunderstorm with hail", "⛈️"}
	default:
		return Condition{"Unknown", "🌡️"}
	}
}
