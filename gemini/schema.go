package gemini

import (
	"github.com/room4-2/aurashield/conversation"

	"google.golang.org/genai"
)

func productSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":             {Type: genai.TypeString},
			"name":           {Type: genai.TypeString},
			"description":    {Type: genai.TypeString},
			"monthlyPremium": {Type: genai.TypeString},
			"coverage":       {Type: genai.TypeString},
			"category": {
				Type: genai.TypeString,
				Enum: []string{
					string(conversation.CategoryHealth),
					string(conversation.CategoryAuto),
					string(conversation.CategoryHome),
					string(conversation.CategoryLife),
				},
			},
			"imageUrl": {
				Type:        genai.TypeString,
				Description: "A placeholder image URL from picsum.photos with a unique seed for each product.",
			},
		},
	}
}

// ResponseSchema is the JSON schema every chat reply must follow
func ResponseSchema() *genai.Schema {
	contentTypes := make([]string, 0, len(conversation.ContentTypes))
	for _, ct := range conversation.ContentTypes {
		contentTypes = append(contentTypes, string(ct))
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"responseText": {
				Type:        genai.TypeString,
				Description: "A short, conversational response to the user's query.",
			},
			"suggestions": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "A list of 3-5 predictive next actions or questions for the user.",
			},
			"contentType": {
				Type:        genai.TypeString,
				Enum:        contentTypes,
				Description: "The type of content to display.",
			},
			"contentData": {
				Type:        genai.TypeObject,
				Description: "Data for the content type. Can contain insurance products, FAQs, etc.",
				Properties: map[string]*genai.Schema{
					"products": {
						Type:  genai.TypeArray,
						Items: productSchema(),
					},
					"product": productSchema(),
					"faqs": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"question": {Type: genai.TypeString},
								"answer":   {Type: genai.TypeString},
							},
						},
					},
					"title":   {Type: genai.TypeString},
					"message": {Type: genai.TypeString},
				},
			},
		},
		Required: []string{"responseText", "suggestions", "contentType", "contentData"},
	}
}
