package services

import (
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GetSystemPrompt defines the standing instructions for meeting extraction.
func GetSystemPrompt() *genai.Content {
	prompt := `You are an intelligent assistant for research students. You read meeting transcripts and extract the information a student needs to act on afterwards.

Always answer with JSON that matches the provided schema:
1.  **summary**: a concise summary (1-2 sentences) of the entire meeting, titled "TL;DR".
2.  **tasks**: every action item or task assigned or discussed. Each task's content MUST contain a deadline statement, either "Deadline: <value>." or "Deadline: unspecified.", and one or more hashtag topic tags such as #experiments or #writing.
3.  **reflections**: key insights, breakthroughs or important conclusions.
4.  **unaddressed**: agenda items that were not discussed. If no agenda was provided, return an empty array.

Do not invent information that is not supported by the transcript.`

	contents := genai.Text(prompt)
	if len(contents) == 0 {
		return nil
	}
	return contents[0]
}

func buildExtractionPrompt(req ExtractionRequest) string {
	agenda := strings.TrimSpace(req.Agenda)
	if agenda == "" {
		agenda = "No agenda provided."
	}
	return fmt.Sprintf(`Here is the meeting agenda:
---
%s
---

Here is the meeting transcript:
---
%s
---

Analyze the transcript and agenda and return the summary, tasks, reflections and unaddressed agenda items.`, agenda, req.Transcript)
}
