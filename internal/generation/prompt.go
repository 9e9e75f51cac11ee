package generation

import "fmt"

// Temperature is fixed for every generation request.
const Temperature = 0.7

// BuildPrompt embeds the three form inputs in the model instruction.
func BuildPrompt(destination string, days int, interests string) string {
	return fmt.Sprintf(
		"Plan a %d-day travel itinerary for %s. The user is interested in: %s. "+
			"Ensure the coordinates are accurate for the city center. "+
			"Return strictly valid JSON matching the schema provided.",
		days, destination, interests)
}
