package gemini

import (
	"errors"
	"fmt"
	"strings"

	"github.com/room4-2/aurashield/conversation"

	"github.com/bytedance/sonic"
)

var (
	// ErrEmptyReply is returned when the model answered with no text
	ErrEmptyReply = errors.New("empty reply from model")
	// ErrNonConforming is returned when the reply does not follow ResponseSchema
	ErrNonConforming = errors.New("reply does not conform to schema")
)

// wireReply uses pointers so missing required fields can be told apart from zero values
type wireReply struct {
	ResponseText *string                   `json:"responseText"`
	Suggestions  []string                  `json:"suggestions"`
	ContentType  *string                   `json:"contentType"`
	ContentData  *conversation.ContentData `json:"contentData"`
}

// ParseReply decodes and validates the model's JSON reply
func ParseReply(text string) (*conversation.StructuredReply, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyReply
	}

	var w wireReply
	if err := sonic.UnmarshalString(trimmed, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNonConforming, err)
	}

	switch {
	case w.ResponseText == nil:
		return nil, fmt.Errorf("%w: missing responseText", ErrNonConforming)
	case w.Suggestions == nil:
		return nil, fmt.Errorf("%w: missing suggestions", ErrNonConforming)
	case w.ContentType == nil:
		return nil, fmt.Errorf("%w: missing contentType", ErrNonConforming)
	case w.ContentData == nil:
		return nil, fmt.Errorf("%w: missing contentData", ErrNonConforming)
	}

	contentType := conversation.ContentType(*w.ContentType)
	if !contentType.Valid() {
		return nil, fmt.Errorf("%w: unknown contentType %q", ErrNonConforming, *w.ContentType)
	}
	if err := checkShape(contentType, w.ContentData); err != nil {
		return nil, err
	}

	return &conversation.StructuredReply{
		ResponseText: *w.ResponseText,
		Suggestions:  w.Suggestions,
		ContentType:  contentType,
		ContentData:  *w.ContentData,
	}, nil
}

func checkShape(contentType conversation.ContentType, data *conversation.ContentData) error {
	switch contentType {
	case conversation.ContentInsuranceList:
		if data.Products == nil {
			return fmt.Errorf("%w: insurance_list without products", ErrNonConforming)
		}
	case conversation.ContentInsuranceDetail:
		if data.Product == nil {
			return fmt.Errorf("%w: insurance_detail without product", ErrNonConforming)
		}
	case conversation.ContentFAQ:
		if data.FAQs == nil {
			return fmt.Errorf("%w: faq without faqs", ErrNonConforming)
		}
	}
	return nil
}
