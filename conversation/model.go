package conversation

import (
	"fmt"

	"github.com/google/uuid"
)

// Sender tags who authored a Message
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one immutable entry of the conversation log
type Message struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

func newMessage(sender Sender, text string) Message {
	return Message{
		ID:     fmt.Sprintf("%s-%s", sender, uuid.NewString()),
		Text:   text,
		Sender: sender,
	}
}

// ContentType selects what the content panel displays
type ContentType string

const (
	ContentWelcome         ContentType = "welcome"
	ContentInsuranceList   ContentType = "insurance_list"
	ContentInsuranceDetail ContentType = "insurance_detail"
	ContentFAQ             ContentType = "faq"
	ContentSupport         ContentType = "support"
	ContentNone            ContentType = "none"
)

// ContentTypes lists every panel type in display order
var ContentTypes = []ContentType{
	ContentWelcome,
	ContentInsuranceList,
	ContentInsuranceDetail,
	ContentFAQ,
	ContentSupport,
	ContentNone,
}

// Valid reports whether t is a known panel type
func (t ContentType) Valid() bool {
	for _, known := range ContentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Category of an insurance product
type Category string

const (
	CategoryHealth Category = "Health"
	CategoryAuto   Category = "Auto"
	CategoryHome   Category = "Home"
	CategoryLife   Category = "Life"
)

// Product is an insurance plan shown on a product card
type Product struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	MonthlyPremium string   `json:"monthlyPremium"`
	Coverage       string   `json:"coverage"`
	Category       Category `json:"category"`
	ImageURL       string   `json:"imageUrl"`
}

// FAQ is a question/answer pair
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ContentData is the panel payload. Which fields are set depends on the ContentType.
type ContentData struct {
	Products []Product `json:"products,omitempty"`
	Product  *Product  `json:"product,omitempty"`
	FAQs     []FAQ     `json:"faqs,omitempty"`
	Title    string    `json:"title,omitempty"`
	Message  string    `json:"message,omitempty"`
}

// Panel is the typed side-content currently displayed
type Panel struct {
	Type ContentType `json:"type"`
	Data ContentData `json:"data"`
}

// StructuredReply is the AI service's answer for a single turn
type StructuredReply struct {
	ResponseText string      `json:"responseText"`
	Suggestions  []string    `json:"suggestions"`
	ContentType  ContentType `json:"contentType"`
	ContentData  ContentData `json:"contentData"`
}

// Panel returns the content panel the reply asks for
func (r *StructuredReply) Panel() Panel {
	return Panel{Type: r.ContentType, Data: r.ContentData}
}
