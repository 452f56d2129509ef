package services

import (
	"context"
	"testing"

	"ember-portal/internal/adapters/persistence/repositories"
	"ember-portal/internal/core/authz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMessageService(db *gorm.DB) *MessageService {
	return NewMessageService(repositories.NewMessageRepository(db), repositories.NewUserRepository(db))
}

func TestMessageSendAndRead(t *testing.T) {
	db := newTestDB(t)
	svc := newMessageService(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice", authz.RoleMember)
	bob := createUser(t, db, "bob", authz.RoleMember)

	_, err := svc.Send(ctx, alice.ID, &SendInput{RecipientID: alice.ID, Body: "hi me"})
	assert.ErrorIs(t, err, ErrSelfMessage)
	_, err = svc.Send(ctx, alice.ID, &SendInput{RecipientID: 9999, Body: "hello?"})
	assert.ErrorIs(t, err, ErrRecipientNotFound)

	msg, err := svc.Send(ctx, alice.ID, &SendInput{RecipientID: bob.ID, Body: "hey bob"})
	require.NoError(t, err)

	count, err := svc.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// only the recipient may mark a message read
	assert.ErrorIs(t, svc.MarkRead(ctx, alice.ID, msg.ID), ErrMessageAccessDenied)
	require.NoError(t, svc.MarkRead(ctx, bob.ID, msg.ID))
	// marking twice has no effect
	require.NoError(t, svc.MarkRead(ctx, bob.ID, msg.ID))

	count, err = svc.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMessageConversation(t *testing.T) {
	db := newTestDB(t)
	svc := newMessageService(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice", authz.RoleMember)
	bob := createUser(t, db, "bob", authz.RoleMember)
	carol := createUser(t, db, "carol", authz.RoleMember)

	_, err := svc.Send(ctx, alice.ID, &SendInput{RecipientID: bob.ID, Body: "one"})
	require.NoError(t, err)
	_, err = svc.Send(ctx, bob.ID, &SendInput{RecipientID: alice.ID, Body: "two"})
	require.NoError(t, err)
	_, err = svc.Send(ctx, alice.ID, &SendInput{RecipientID: carol.ID, Body: "other thread"})
	require.NoError(t, err)

	// both directions, third parties excluded
	messages, total, err := svc.Conversation(ctx, alice.ID, bob.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, messages, 2)

	inbox, total, err := svc.Inbox(ctx, bob.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, inbox, 1)
	assert.Equal(t, "one", inbox[0].Body)
}

func TestMessageDelete(t *testing.T) {
	db := newTestDB(t)
	svc := newMessageService(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice", authz.RoleMember)
	bob := createUser(t, db, "bob", authz.RoleMember)
	carol := createUser(t, db, "carol", authz.RoleMember)

	msg, err := svc.Send(ctx, alice.ID, &SendInput{RecipientID: bob.ID, Body: "oops"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, carol.ID, msg.ID), ErrMessageAccessDenied)
	require.NoError(t, svc.Delete(ctx, alice.ID, msg.ID))
	assert.ErrorIs(t, svc.Delete(ctx, alice.ID, msg.ID), ErrMessageNotFound)
}
