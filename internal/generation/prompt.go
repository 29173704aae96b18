package generation

import "strings"

const defaultPromptTemplate = "Write a {tone} advertisement for {platform} in {language}.\n" +
	"Product: {product}\n" +
	"Description: {description}\n" +
	"Keep it under 80 words and end with a call to action."

// RenderPrompt substitutes the request fields into a template body.
// An empty template falls back to the built-in prompt. Unknown
// placeholders are left as-is so typos surface in the output instead
// of silently disappearing.
func RenderPrompt(template string, req Request) string {
	body := strings.TrimSpace(template)
	if body == "" {
		body = defaultPromptTemplate
	}

	replacer := strings.NewReplacer(
		"{product}", strings.TrimSpace(req.Product),
		"{description}", strings.TrimSpace(req.Description),
		"{platform}", orDefault(req.Platform, "social media"),
		"{tone}", orDefault(req.Tone, "friendly"),
		"{language}", orDefault(req.Language, "English"),
	)
	return replacer.Replace(body)
}

func orDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
