package extract

import "strings"

const systemPrompt = `You read messages sent to an alumni directory assistant and extract what the user is searching for.
Reply with one JSON object and nothing else:
{
  "is_name_search": boolean,   // true only when the user asks about one specific named person
  "person_name": string,       // that person's name, else ""
  "skills": [string],          // skills, domains, sectors ("web development", "fundraising")
  "locations": [string],       // cities, states, countries
  "companies": [string],       // organizations
  "roles": [string],           // professions or titles ("lawyer", "founder")
  "education": [string],       // institutions, degrees, fields of study
  "keywords": [string],        // other meaningful search words
  "confidence": number         // 0..1
}
Rules:
- Use lower case singular terms. Omit filler words ("people", "someone", "in").
- A bare profession word is a role, not a name.
- Earlier messages are context only; extract terms from the latest message.`

// userPrompt renders the latest message with up to two earlier ones as context.
func userPrompt(text string, history []string) string {
	var b strings.Builder
	if len(history) > 0 {
		b.WriteString("Earlier messages:\n")
		for _, h := range history {
			b.WriteString("- ")
			b.WriteString(h)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	b.WriteString("Latest message: ")
	b.WriteString(text)
	return b.String()
}
