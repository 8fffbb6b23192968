package chat

import (
	"fmt"

	"interview-chatter/internal/interview"
)

const greetingText = "Hi! I'm your AI interview generator. Tell me what kind of interview you'd like me to create. For example:\n\n" +
	"• \"Generate a Software Engineering interview for a mid-level candidate\"\n" +
	"• \"Create a Frontend Engineering interview for a junior developer\"\n" +
	"• \"Make a Product Management interview for a senior role\""

const guidanceText = "I couldn't understand your request. Please try something like:\n\n" +
	"• \"Generate a Software Engineering interview for a mid-level candidate\"\n" +
	"• \"Create a 45-minute Frontend interview for a senior developer\""

const timeoutText = "⏱️ Interview generation is taking longer than expected. Please try again."

// Greeting is the first message of every transcript.
func Greeting() string { return greetingText }

func submittingText(r interview.Request) string {
	return fmt.Sprintf("🎯 Generating a %s %s interview (%d minutes)...\n\nThis may take 10-30 seconds.",
		r.Difficulty, r.Topic, r.DurationMinutes)
}

func resolvedText(t interview.Transcript) string {
	return "✅ Interview generated successfully!\n\n" + t.Summary() +
		"\n\nUse \"Copy JSON\" or \"Download\" to get the full transcript."
}

func failedText(serviceMsg string) string {
	if serviceMsg == "" {
		serviceMsg = "Unknown error"
	}
	return "❌ Failed to generate interview: " + serviceMsg
}

func errorText(err error) string {
	if err == nil {
		return "❌ Error: Something went wrong"
	}
	return "❌ Error: " + err.Error()
}
