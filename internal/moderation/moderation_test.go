package moderation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tellnoone/backend/internal/llm"
	"tellnoone/backend/internal/moderation"
)

type stubGateway struct {
	response string
	err      error
	lastReq  llm.Request
}

func (s *stubGateway) Complete(ctx context.Context, req llm.Request) (string, error) {
	s.lastReq = req
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestModeratePost_Approves(t *testing.T) {
	gateway := &stubGateway{response: `{"isPositive": true, "reason": "gratitude post"}`}
	service := moderation.NewService(gateway)

	result, err := service.ModeratePost(context.Background(), "Thankful", "Grateful for this community")

	require.NoError(t, err)
	assert.True(t, result.IsPositive)
	assert.Equal(t, "gratitude post", result.Reason)
}

func TestModeratePost_Rejects(t *testing.T) {
	gateway := &stubGateway{response: `{"isPositive": false, "reason": "venting"}`}
	service := moderation.NewService(gateway)

	result, err := service.ModeratePost(context.Background(), "", "everything is awful")

	require.NoError(t, err)
	assert.False(t, result.IsPositive)
}

func TestModeratePost_FencedResponse(t *testing.T) {
	gateway := &stubGateway{response: "```json\n{\"isPositive\": true, \"reason\": \"ok\"}\n```"}
	service := moderation.NewService(gateway)

	result, err := service.ModeratePost(context.Background(), "Title", "content")

	require.NoError(t, err)
	assert.True(t, result.IsPositive)
}

// Moderation fails closed: any gateway or parse failure rejects the post
// instead of letting unverified content through.
func TestModeratePost_GatewayFailureRejects(t *testing.T) {
	gateway := &stubGateway{err: assert.AnError}
	service := moderation.NewService(gateway)

	result, err := service.ModeratePost(context.Background(), "Title", "content")

	require.NoError(t, err, "failure must degrade to a rejection, not an error")
	assert.False(t, result.IsPositive)
	assert.Equal(t, "Unable to verify content positivity", result.Reason)
}

func TestModeratePost_ParseFailureRejects(t *testing.T) {
	gateway := &stubGateway{response: "sure, looks positive to me!"}
	service := moderation.NewService(gateway)

	result, err := service.ModeratePost(context.Background(), "Title", "content")

	require.NoError(t, err)
	assert.False(t, result.IsPositive)
	assert.Equal(t, "Unable to analyze content", result.Reason)
}

func TestModeratePost_DefaultsMissingTitle(t *testing.T) {
	gateway := &stubGateway{response: `{"isPositive": true, "reason": "ok"}`}
	service := moderation.NewService(gateway)

	_, err := service.ModeratePost(context.Background(), "", "content only")

	require.NoError(t, err)
	require.Len(t, gateway.lastReq.Messages, 2)
	assert.Contains(t, gateway.lastReq.Messages[1].Content, "Title: No title")
}
