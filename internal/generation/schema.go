package generation

import (
	"strings"

	"google.golang.org/genai"
)

// Schema is a minimal JSON schema tree. It renders into the dialects the
// providers accept. Every listed property is required.
type Schema struct {
	Type        string
	Description string
	// Properties are kept in declaration order; Gemini honours it.
	Properties []Property
	Items      *Schema
}

// Property is a named object member.
type Property struct {
	Name   string
	Schema *Schema
}

func str(desc string) *Schema { return &Schema{Type: "string", Description: desc} }
func num(desc string) *Schema { return &Schema{Type: "number", Description: desc} }

// ItinerarySchema is the output contract sent with every generation request.
var ItinerarySchema = &Schema{
	Type: "object",
	Properties: []Property{
		{"destination", str("The name of the city/location")},
		{"coordinates", &Schema{
			Type: "object",
			Properties: []Property{
				{"lat", num("Latitude in WGS84 degrees")},
				{"lng", num("Longitude in WGS84 degrees")},
			},
		}},
		{"summary", str("A brief 2-sentence summary of the trip vibe.")},
		{"days", &Schema{
			Type: "array",
			Items: &Schema{
				Type: "object",
				Properties: []Property{
					{"dayTitle", str("Theme of the day (e.g., 'Historical Walk')")},
					{"activities", &Schema{
						Type: "array",
						Items: &Schema{
							Type: "object",
							Properties: []Property{
								{"time", str("Time of day (e.g., 9:00 AM)")},
								{"activity", str("Name of the activity")},
								{"description", str("Short details about the activity")},
								{"emoji", str("A relevant emoji for the activity")},
							},
						},
					}},
				},
			},
		}},
	},
}

func (s *Schema) names() []string {
	out := make([]string, len(s.Properties))
	for i, p := range s.Properties {
		out[i] = p.Name
	}
	return out
}

// Gemini renders the OpenAPI subset used by generateContent's responseSchema.
func (s *Schema) Gemini() *genai.Schema {
	out := &genai.Schema{
		Type:        genai.Type(strings.ToUpper(s.Type)),
		Description: s.Description,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for _, p := range s.Properties {
			out.Properties[p.Name] = p.Schema.Gemini()
		}
		out.Required = s.names()
		out.PropertyOrdering = s.names()
	}
	if s.Items != nil {
		out.Items = s.Items.Gemini()
	}
	return out
}

// JSONSchema renders standard JSON Schema in the strict form OpenAI
// structured outputs require.
func (s *Schema) JSONSchema() map[string]any {
	out := map[string]any{"type": s.Type}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if s.Type == "object" {
		props := make(map[string]any, len(s.Properties))
		for _, p := range s.Properties {
			props[p.Name] = p.Schema.JSONSchema()
		}
		out["properties"] = props
		out["required"] = s.names()
		out["additionalProperties"] = false
	}
	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}
	return out
}
