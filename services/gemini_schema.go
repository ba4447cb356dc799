package services

import "google.golang.org/genai"

func itemSchema(titleDesc, contentDesc string) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {
				Type:        genai.TypeString,
				Description: titleDesc,
			},
			"content": {
				Type:        genai.TypeString,
				Description: contentDesc,
			},
		},
		Required: []string{"title", "content"},
	}
}

// GetExtractionSchema defines the JSON shape Gemini must answer with.
func GetExtractionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": func() *genai.Schema {
				s := itemSchema("Should be 'TL;DR'.", "The summary of the whole meeting, 1-2 sentences.")
				s.Description = "A concise summary of the entire meeting."
				return s
			}(),
			"tasks": {
				Type:        genai.TypeArray,
				Description: "Every action item and task assigned or discussed.",
				Items: itemSchema(
					"A short, actionable title for the task.",
					"Details of the task. Must contain 'Deadline: <value>' or 'Deadline: unspecified' and one or more #topic tags.",
				),
			},
			"reflections": {
				Type:        genai.TypeArray,
				Description: "Key insights, breakthroughs or conclusions reached.",
				Items:       itemSchema("A short title for the reflection.", "Details of the reflection."),
			},
			"unaddressed": {
				Type:        genai.TypeArray,
				Description: "Agenda items that were not discussed.",
				Items:       itemSchema("The unaddressed agenda item.", "A brief note on why it might be unaddressed, if evident."),
			},
		},
		Required: []string{"summary", "tasks", "reflections", "unaddressed"},
	}
}
