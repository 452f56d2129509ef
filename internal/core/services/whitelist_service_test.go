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

func newWhitelistService(db *gorm.DB) *WhitelistService {
	return NewWhitelistService(
		repositories.NewWhitelistRepository(db),
		repositories.NewUserRepository(db),
		newAudit(db),
		newNotify(),
	)
}

// seedQuestions creates one required and one optional active question
func seedQuestions(t *testing.T, svc *WhitelistService) (required, optional *models.WhitelistQuestion) {
	t.Helper()
	ctx := context.Background()

	required, err := svc.CreateQuestion(ctx, &QuestionInput{
		Prompt: "Why do you want to join?", Required: true, Position: 1, IsActive: true,
	})
	require.NoError(t, err)

	optional, err = svc.CreateQuestion(ctx, &QuestionInput{
		Prompt: "Anything else?", Position: 2, IsActive: true,
	})
	require.NoError(t, err)
	return required, optional
}

func createApplicant(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := createUser(t, db, name, authz.RoleMember)
	user.MinecraftName = name
	require.NoError(t, db.Save(user).Error)
	return user
}

func TestWhitelistSubmitValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newWhitelistService(db)
	ctx := context.Background()

	required, _ := seedQuestions(t, svc)

	// no minecraft name, no application
	bare := createUser(t, db, "bare", authz.RoleMember)
	_, err := svc.Submit(ctx, bare.ID, &SubmitInput{
		Answers: []AnswerInput{{QuestionID: required.ID, Body: "please"}},
	})
	assert.ErrorIs(t, err, ErrMinecraftNameRequired)

	applicant := createApplicant(t, db, "steve")

	// the required question must be answered, and non-empty
	_, err = svc.Submit(ctx, applicant.ID, &SubmitInput{Answers: []AnswerInput{}})
	assert.ErrorIs(t, err, ErrMissingAnswers)
	_, err = svc.Submit(ctx, applicant.ID, &SubmitInput{
		Answers: []AnswerInput{{QuestionID: required.ID, Body: ""}},
	})
	assert.ErrorIs(t, err, ErrMissingAnswers)

	// answers may only reference known active questions
	_, err = svc.Submit(ctx, applicant.ID, &SubmitInput{
		Answers: []AnswerInput{{QuestionID: 9999, Body: "?"}},
	})
	assert.ErrorIs(t, err, ErrUnknownQuestionAnswer)

	app, err := svc.Submit(ctx, applicant.ID, &SubmitInput{
		Answers: []AnswerInput{{QuestionID: required.ID, Body: "I like building"}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.WhitelistPending, app.Status)

	// the user record mirrors the application status
	var user models.User
	require.NoError(t, db.First(&user, applicant.ID).Error)
	assert.Equal(t, models.WhitelistPending, user.WhitelistStatus)

	// one pending application per user
	_, err = svc.Submit(ctx, applicant.ID, &SubmitInput{
		Answers: []AnswerInput{{QuestionID: required.ID, Body: "again"}},
	})
	pre, ok := domain.AsPrecondition(err)
	require.True(t, ok)
	assert.Equal(t, domain.ReasonAlreadyPending, pre.Reason)
}

func TestWhitelistReviewFlow(t *testing.T) {
	db := newTestDB(t)
	svc := newWhitelistService(db)
	ctx := context.Background()

	required, _ := seedQuestions(t, svc)
	applicant := createApplicant(t, db, "alex")
	reviewer := createUser(t, db, "reviewer", authz.RoleModerator)

	app, err := svc.Submit(ctx, applicant.ID, &SubmitInput{
		Answers: []AnswerInput{{QuestionID: required.ID, Body: "redstone"}},
	})
	require.NoError(t, err)

	_, err = svc.Review(ctx, reviewer.ID, app.ID, &ReviewInput{Decision: "MAYBE"}, "")
	assert.ErrorIs(t, err, ErrInvalidDecision)

	reviewed, err := svc.Review(ctx, reviewer.ID, app.ID, &ReviewInput{
		Decision: models.WhitelistApproved, Note: "welcome",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, models.WhitelistApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewerID)
	assert.Equal(t, reviewer.ID, *reviewed.ReviewerID)

	var user models.User
	require.NoError(t, db.First(&user, applicant.ID).Error)
	assert.Equal(t, models.WhitelistApproved, user.WhitelistStatus)

	// a decided application cannot be reviewed again
	_, err = svc.Review(ctx, reviewer.ID, app.ID, &ReviewInput{Decision: models.WhitelistRejected}, "")
	pre, ok := domain.AsPrecondition(err)
	require.True(t, ok)
	assert.Equal(t, domain.ReasonAlreadyReviewed, pre.Reason)

	assert.EqualValues(t, 1, auditCount(t, db, models.AuditWhitelistReview))
}

func TestWhitelistRevoke(t *testing.T) {
	db := newTestDB(t)
	svc := newWhitelistService(db)
	ctx := context.Background()

	required, _ := seedQuestions(t, svc)
	applicant := createApplicant(t, db, "herobrine")
	reviewer := createUser(t, db, "reviewer", authz.RoleModerator)

	app, err := svc.Submit(ctx, applicant.ID, &SubmitInput{
		Answers: []AnswerInput{{QuestionID: required.ID, Body: "mining"}},
	})
	require.NoError(t, err)
	_, err = svc.Review(ctx, reviewer.ID, app.ID, &ReviewInput{Decision: models.WhitelistApproved}, "")
	require.NoError(t, err)

	// approved members show up in the pseudo-status listing
	list, err := svc.List(ctx, ApprovedUsersStatus, 0, 10)
	require.NoError(t, err)
	require.Len(t, list.Users, 1)
	assert.Equal(t, applicant.Username, list.Users[0].Username)

	revoked, err := svc.Revoke(ctx, reviewer.ID, app.ID, "broke the rules", "")
	require.NoError(t, err)
	assert.Equal(t, models.WhitelistRevoked, revoked.Status)

	list, err = svc.List(ctx, ApprovedUsersStatus, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, list.Users)

	var user models.User
	require.NoError(t, db.First(&user, applicant.ID).Error)
	assert.Equal(t, models.WhitelistRevoked, user.WhitelistStatus)

	// revoking twice is rejected
	_, err = svc.Revoke(ctx, reviewer.ID, app.ID, "", "")
	pre, ok := domain.AsPrecondition(err)
	require.True(t, ok)
	assert.Equal(t, domain.ReasonAlreadyRevoked, pre.Reason)
}

func TestWhitelistGetOwnOrdersAnswers(t *testing.T) {
	db := newTestDB(t)
	svc := newWhitelistService(db)
	ctx := context.Background()

	required, optional := seedQuestions(t, svc)
	applicant := createApplicant(t, db, "notch")

	// submit answers out of display order
	_, err := svc.Submit(ctx, applicant.ID, &SubmitInput{
		Answers: []AnswerInput{
			{QuestionID: optional.ID, Body: "nothing"},
			{QuestionID: required.ID, Body: "friends play here"},
		},
	})
	require.NoError(t, err)

	app, err := svc.GetOwn(ctx, applicant.ID)
	require.NoError(t, err)
	require.NotNil(t, app)
	require.Len(t, app.Answers, 2)
	assert.Equal(t, required.ID, app.Answers[0].QuestionID, "answers come back in question order")

	// a user who never applied gets nil, not an error
	other := createApplicant(t, db, "other")
	app, err = svc.GetOwn(ctx, other.ID)
	require.NoError(t, err)
	assert.Nil(t, app)
}
