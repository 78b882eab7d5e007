package conversation

import "fmt"

// Suggestions offered by the fallback reply
const (
	SuggestionStartOver      = "Start over"
	SuggestionContactSupport = "Contact support"
)

const welcomeText = "Welcome to Aura Shield. I'm your personal insurance advisor. I can help you find the perfect coverage for your needs. What are you looking for today?"

// Shown when the AI service cannot be initialized
const (
	InitFailureText    = "There was a problem connecting to the AI service. Please check your configuration and refresh the page."
	initFailureTitle   = "Initialization Failed"
	initFailureMessage = "Could not connect to the AI service. Please check your API key and refresh the page."
)

// InitialReply is what a new session shows before the user says anything
func InitialReply() *StructuredReply {
	return &StructuredReply{
		ResponseText: welcomeText,
		Suggestions: []string{
			"Explore health insurance plans",
			"I need car insurance",
			"Tell me about home insurance",
			"What is Aura Shield?",
		},
		ContentType: ContentWelcome,
		ContentData: ContentData{
			Title:   "Welcome to Aura Shield",
			Message: "Your partner in protection. Let's find the right insurance plan for you. Select an option or type a message to start.",
		},
	}
}

// FallbackReply replaces the AI answer when the conversation call fails
func FallbackReply() *StructuredReply {
	return &StructuredReply{
		ResponseText: "I'm sorry, but I encountered an error. Please try again.",
		Suggestions:  []string{SuggestionStartOver, SuggestionContactSupport},
		ContentType:  ContentSupport,
		ContentData: ContentData{
			Title:   "System Error",
			Message: "There was a problem communicating with the AI. Please check your connection and try again.",
		},
	}
}

func initFailurePanel() Panel {
	return Panel{
		Type: ContentSupport,
		Data: ContentData{Title: initFailureTitle, Message: initFailureMessage},
	}
}

// ProductQuestion is the message submitted when a product card is selected
func ProductQuestion(productName string) string {
	return fmt.Sprintf("Tell me more about %s", productName)
}
