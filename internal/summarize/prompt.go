package summarize

import (
	"fmt"
	"strings"
)

// SystemPrompt frames the model as a consultant for an AI-agent staffing business.
const SystemPrompt = `You are a consultant specializing in AI agent staffing: renting task-focused AI agents to small businesses.
Analyze the supplied YouTube transcript and derive concrete, feasible business insights.

Report format:
1. Video summary (3 lines)
2. Key technology and trend analysis
3. Five AI agent business application ideas, each described in detail
4. Conclusion and recommendations

Write at least half an A4 page. Answer in the language of the report audience: %s.`

// BuildUserPrompt assembles the per-video prompt. transcript must already be truncated.
func BuildUserPrompt(title, channel, transcript string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Video title: %s\n", strings.TrimSpace(title))
	if channel = strings.TrimSpace(channel); channel != "" {
		fmt.Fprintf(&b, "Channel: %s\n", channel)
	}
	b.WriteString("\nTranscript:\n")
	b.WriteString(transcript)
	return b.String()
}

func buildSystemPrompt(language string) string {
	language = strings.TrimSpace(language)
	if language == "" {
		language = "ko"
	}
	return fmt.Sprintf(SystemPrompt, language)
}
