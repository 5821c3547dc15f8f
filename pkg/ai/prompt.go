package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// stripCodeFence removes a surrounding markdown code fence if the model
// wrapped its JSON output in one.
func stripCodeFence(s string) string {
	if m := codeFenceRe.FindStringSubmatch(s); len(m) == 2 {
		return m[1]
	}
	return strings.TrimSpace(s)
}

func extractionPrompt(emailText string) string {
	currentDate := time.Now().Format("2006-01-02")

	return fmt.Sprintf(`You are an assistant that extracts actionable tasks from emails.

TODAY'S DATE: %s

INSTRUCTIONS:
1. Read the email and find ALL actionable items: to-dos, deadlines, meetings, assignments, interviews.
2. Respond with a single JSON object: {"is_actionable": bool, "tasks": [...]}.
3. Each task needs: title (required), details, priority (integer 1-4, 4 = most urgent), deadline (ISO 8601 if mentioned), type (one of "interview", "meeting", "assignment", "general"), links (array of URLs found in the email).
4. For interview tasks also fill company and role when they can be read from the email.
5. If the email contains nothing actionable (newsletter, ad, FYI), respond {"is_actionable": false, "tasks": []}.

Respond with JSON only, no other text.

EMAIL:
%s

JSON OUTPUT:`, currentDate, emailText)
}

func interviewPrompt(company, role, style string) string {
	if style == "" {
		style = "mixed"
	}

	return fmt.Sprintf(`You are an experienced interview coach. Generate 8-10 interview preparation questions for the following position.

COMPANY: %s
ROLE: %s
STYLE: %s (behavioral / technical / mixed)

Respond with a JSON array only, each element: {"type": "behavioral"|"technical"|"company", "question": "..."}.

JSON OUTPUT:`, company, role, style)
}

func decodeExtraction(raw string) (*ExtractionResult, error) {
	cleaned := stripCodeFence(raw)

	var result ExtractionResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		// Some models answer with a bare task array
		var tasks []TaskCandidate
		if arrErr := json.Unmarshal([]byte(cleaned), &tasks); arrErr == nil {
			return &ExtractionResult{IsActionable: len(tasks) > 0, Tasks: tasks}, nil
		}
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}
	return &result, nil
}

func decodeQuestions(raw string) ([]InterviewQuestion, error) {
	cleaned := stripCodeFence(raw)

	var questions []InterviewQuestion
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, fmt.Errorf("failed to parse questions response: %w", err)
	}
	return questions, nil
}
