package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageBeforeCreateGeneratesID(t *testing.T) {
	msg := &Message{Role: MessageRoleUser, Content: "hi"}
	require.NoError(t, msg.BeforeCreate(nil))

	_, err := uuid.Parse(msg.ID)
	assert.NoError(t, err)

	// 已有 ID 不会被覆盖
	existing := msg.ID
	require.NoError(t, msg.BeforeCreate(nil))
	assert.Equal(t, existing, msg.ID)
}

func TestMessageBeforeCreateRejectsUnknownRole(t *testing.T) {
	for _, role := range []string{"", "system", "tool", "User"} {
		msg := &Message{Role: role, Content: "hi"}
		err := msg.BeforeCreate(nil)
		assert.ErrorIs(t, err, ErrInvalidRole, "role %q", role)
	}
}

func TestConversationBeforeCreateGeneratesID(t *testing.T) {
	conversation := &Conversation{SessionID: uuid.New().String()}
	require.NoError(t, conversation.BeforeCreate(nil))

	_, err := uuid.Parse(conversation.ID)
	assert.NoError(t, err)
}
