package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranscriptApply(t *testing.T) {
	var tr Transcript

	tr.Apply(SpeechEvent{Interim: "hel"})
	assert.Equal(t, Transcript{Interim: "hel"}, tr)

	tr.Apply(SpeechEvent{Final: []string{"hello"}, Interim: " wor"})
	assert.Equal(t, Transcript{Interim: " wor", Final: "hello"}, tr)

	tr.Apply(SpeechEvent{Final: []string{" world", "!"}})
	assert.Equal(t, Transcript{Final: "hello world!"}, tr)

	tr.Reset()
	assert.Equal(t, Transcript{}, tr)
}

func TestTranscriptDisplay(t *testing.T) {
	assert.Equal(t, "typing", Transcript{Interim: "typing"}.Display())
	assert.Equal(t, "done", Transcript{Interim: "typing", Final: " done "}.Display())
	assert.Equal(t, "typing", Transcript{Interim: "typing", Final: "  "}.Display())
}

func TestContentTypeValid(t *testing.T) {
	for _, ct := range ContentTypes {
		assert.True(t, ct.Valid(), ct)
	}
	assert.False(t, ContentType("carousel").Valid())
	assert.False(t, ContentType("").Valid())
}

func TestFallbackReplyShape(t *testing.T) {
	reply := FallbackReply()
	assert.Equal(t, ContentSupport, reply.ContentType)
	assert.Equal(t, []string{"Start over", "Contact support"}, reply.Suggestions)
	assert.NotEmpty(t, reply.ContentData.Title)
	assert.NotEmpty(t, reply.ContentData.Message)
}
