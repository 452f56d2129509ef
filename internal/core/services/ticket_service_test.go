package services

import (
	"context"
	"testing"

	"ember-portal/internal/adapters/persistence/models"
	"ember-portal/internal/adapters/persistence/repositories"
	"ember-portal/internal/core/authz"
	"ember-portal/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTicketService(db *gorm.DB) *TicketService {
	return NewTicketService(
		repositories.NewTicketRepository(db),
		repositories.NewUserRepository(db),
		newAudit(db),
		newNotify(),
	)
}

func TestTicketLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := newTicketService(db)
	ctx := context.Background()

	creator := createUser(t, db, "creator", authz.RoleMember)
	helper := createUser(t, db, "helper", authz.RoleHelper)

	ticket, err := svc.Create(ctx, creator.ID, &CreateTicketInput{Subject: "cannot log in", Body: "help"})
	require.NoError(t, err)
	assert.Equal(t, models.TicketOpen, ticket.Status)

	// a staff reply moves an open ticket to in progress
	_, err = svc.Reply(ctx, subjectFor(helper), ticket.ID, &ReplyInput{Body: "looking into it"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, subjectFor(helper), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketInProgress, got.Status)

	// the creator's own replies never change the status
	_, err = svc.Reply(ctx, subjectFor(creator), ticket.ID, &ReplyInput{Body: "thanks"})
	require.NoError(t, err)
	got, err = svc.Get(ctx, subjectFor(creator), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketInProgress, got.Status)

	closed, err := svc.Close(ctx, helper.ID, ticket.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.TicketClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	_, err = svc.Reply(ctx, subjectFor(creator), ticket.ID, &ReplyInput{Body: "one more thing"})
	assert.ErrorIs(t, err, ErrTicketClosed)
}

func TestTicketInternalNotesHiddenFromCreator(t *testing.T) {
	db := newTestDB(t)
	svc := newTicketService(db)
	ctx := context.Background()

	creator := createUser(t, db, "creator", authz.RoleMember)
	helper := createUser(t, db, "helper", authz.RoleHelper)
	stranger := createUser(t, db, "stranger", authz.RoleMember)

	ticket, err := svc.Create(ctx, creator.ID, &CreateTicketInput{Subject: "griefing report", Body: "details"})
	require.NoError(t, err)

	// members cannot write internal notes
	_, err = svc.Reply(ctx, subjectFor(creator), ticket.ID, &ReplyInput{Body: "psst", Internal: true})
	assert.ErrorIs(t, err, ErrTicketAccessDenied)

	_, err = svc.Reply(ctx, subjectFor(helper), ticket.ID, &ReplyInput{Body: "checked the logs", Internal: true})
	require.NoError(t, err)

	staffView, err := svc.Get(ctx, subjectFor(helper), ticket.ID)
	require.NoError(t, err)
	assert.Len(t, staffView.Messages, 2)

	creatorView, err := svc.Get(ctx, subjectFor(creator), ticket.ID)
	require.NoError(t, err)
	assert.Len(t, creatorView.Messages, 1)

	// unrelated members see nothing at all
	_, err = svc.Get(ctx, subjectFor(stranger), ticket.ID)
	assert.ErrorIs(t, err, ErrTicketAccessDenied)
}

func TestTicketCloseQueuesRating(t *testing.T) {
	db := newTestDB(t)
	svc := newTicketService(db)
	ctx := context.Background()

	creator := createUser(t, db, "creator", authz.RoleMember)
	helper := createUser(t, db, "helper", authz.RoleHelper)

	ticket, err := svc.Create(ctx, creator.ID, &CreateTicketInput{Subject: "first", Body: "a"})
	require.NoError(t, err)
	_, err = svc.Close(ctx, helper.ID, ticket.ID, "")
	require.NoError(t, err)

	// closing twice must not queue a second obligation
	_, err = svc.Close(ctx, helper.ID, ticket.ID, "")
	require.NoError(t, err)

	count, err := svc.PendingRatingCount(ctx, creator.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// obligations are served oldest first
	second, err := svc.Create(ctx, creator.ID, &CreateTicketInput{Subject: "second", Body: "b"})
	require.NoError(t, err)
	_, err = svc.Close(ctx, helper.ID, second.ID, "")
	require.NoError(t, err)

	next, err := svc.NextRating(ctx, creator.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, ticket.ID, next.TicketID)

	assert.ErrorIs(t, svc.SubmitRating(ctx, creator.ID, next.ID, 0), ErrInvalidScore)
	assert.ErrorIs(t, svc.SubmitRating(ctx, creator.ID, next.ID, 6), ErrInvalidScore)
	// only the rater may complete their own obligation
	assert.ErrorIs(t, svc.SubmitRating(ctx, helper.ID, next.ID, 5), ErrRatingNotFound)

	require.NoError(t, svc.SubmitRating(ctx, creator.ID, next.ID, 5))
	assert.ErrorIs(t, svc.SubmitRating(ctx, creator.ID, next.ID, 4), ErrRatingCompleted)

	next, err = svc.NextRating(ctx, creator.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, second.ID, next.TicketID)
}

func TestTicketCloseOwnSkipsRating(t *testing.T) {
	db := newTestDB(t)
	svc := newTicketService(db)
	ctx := context.Background()

	creator := createUser(t, db, "creator", authz.RoleMember)

	ticket, err := svc.Create(ctx, creator.ID, &CreateTicketInput{Subject: "nevermind", Body: "solved it"})
	require.NoError(t, err)
	_, err = svc.Close(ctx, creator.ID, ticket.ID, "")
	require.NoError(t, err)

	count, err := svc.PendingRatingCount(ctx, creator.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTicketDeleteRequiresClosed(t *testing.T) {
	db := newTestDB(t)
	svc := newTicketService(db)
	ctx := context.Background()

	creator := createUser(t, db, "creator", authz.RoleMember)
	mod := createUser(t, db, "mod", authz.RoleModerator)

	ticket, err := svc.Create(ctx, creator.ID, &CreateTicketInput{Subject: "spam", Body: "x"})
	require.NoError(t, err)

	err = svc.Delete(ctx, mod.ID, ticket.ID, "")
	pre, ok := domain.AsPrecondition(err)
	require.True(t, ok)
	assert.Equal(t, domain.ReasonTicketNotClosed, pre.Reason)

	// the rejected delete left the ticket untouched
	got, err := svc.Get(ctx, subjectFor(mod), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketOpen, got.Status)

	_, err = svc.Close(ctx, mod.ID, ticket.ID, "")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, mod.ID, ticket.ID, ""))

	_, err = svc.Get(ctx, subjectFor(mod), ticket.ID)
	assert.ErrorIs(t, err, ErrTicketNotFound)
	assert.EqualValues(t, 1, auditCount(t, db, models.AuditTicketDelete))
}

func TestTicketListScoping(t *testing.T) {
	db := newTestDB(t)
	svc := newTicketService(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice", authz.RoleMember)
	bob := createUser(t, db, "bob", authz.RoleMember)
	helper := createUser(t, db, "helper", authz.RoleHelper)

	_, err := svc.Create(ctx, alice.ID, &CreateTicketInput{Subject: "a", Body: "a"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob.ID, &CreateTicketInput{Subject: "b", Body: "b"})
	require.NoError(t, err)

	tickets, total, err := svc.List(ctx, subjectFor(alice), "", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, tickets, 1)
	assert.Equal(t, alice.ID, tickets[0].CreatorID)

	_, total, err = svc.List(ctx, subjectFor(helper), "", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
