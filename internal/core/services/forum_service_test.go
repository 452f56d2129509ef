package services

import (
	"context"
	"testing"

	"ember-portal/internal/adapters/persistence/models"
	"ember-portal/internal/adapters/persistence/repositories"
	"ember-portal/internal/core/authz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newForumService(db *gorm.DB) *ForumService {
	return NewForumService(
		repositories.NewForumRepository(db),
		repositories.NewSettingRepository(db),
		newAudit(db),
	)
}

// seedBoard creates a category with one board and returns the board
func seedBoard(t *testing.T, svc *ForumService, name string) *models.Board {
	t.Helper()
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, &CreateCategoryInput{Name: name + " category"})
	require.NoError(t, err)

	board, err := svc.CreateBoard(ctx, &CreateBoardInput{CategoryID: category.ID, Name: name})
	require.NoError(t, err)
	return board
}

func TestForumLockCycle(t *testing.T) {
	db := newTestDB(t)
	svc := newForumService(db)
	ctx := context.Background()

	author := createUser(t, db, "author", authz.RoleMember)
	mod := createUser(t, db, "mod", authz.RoleModerator)
	board := seedBoard(t, svc, "General")

	topic, err := svc.CreateTopic(ctx, subjectFor(author), &CreateTopicInput{
		BoardID: board.ID,
		Title:   "hello",
		Body:    "first post",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TopicOpen, topic.Status)

	// the lock state walks a fixed three-step cycle back to open
	status, err := svc.ToggleLock(ctx, mod.ID, topic.ID, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, models.TopicLocked, status)

	status, err = svc.ToggleLock(ctx, mod.ID, topic.ID, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, models.TopicLockedAdmin, status)

	status, err = svc.ToggleLock(ctx, mod.ID, topic.ID, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, models.TopicOpen, status)

	assert.EqualValues(t, 3, auditCount(t, db, models.AuditTopicLockToggle))
}

func TestForumReplyLockGates(t *testing.T) {
	db := newTestDB(t)
	svc := newForumService(db)
	ctx := context.Background()

	author := createUser(t, db, "author", authz.RoleMember)
	mod := createUser(t, db, "mod", authz.RoleModerator)
	admin := createUser(t, db, "admin", authz.RoleAdmin)
	board := seedBoard(t, svc, "General")

	topic, err := svc.CreateTopic(ctx, subjectFor(author), &CreateTopicInput{
		BoardID: board.ID, Title: "gated", Body: "op",
	})
	require.NoError(t, err)

	// LOCKED keeps members out but moderators in
	_, err = svc.ToggleLock(ctx, mod.ID, topic.ID, "")
	require.NoError(t, err)

	_, err = svc.Reply(ctx, subjectFor(author), topic.ID, "member reply")
	assert.ErrorIs(t, err, ErrTopicLocked)
	_, err = svc.Reply(ctx, subjectFor(mod), topic.ID, "mod reply")
	assert.NoError(t, err)

	// LOCKED_ADMIN shuts out moderators too
	_, err = svc.ToggleLock(ctx, mod.ID, topic.ID, "")
	require.NoError(t, err)

	_, err = svc.Reply(ctx, subjectFor(mod), topic.ID, "mod reply")
	assert.ErrorIs(t, err, ErrTopicLocked)
	_, err = svc.Reply(ctx, subjectFor(admin), topic.ID, "admin reply")
	assert.NoError(t, err)
}

func TestForumAdminOnlyBoard(t *testing.T) {
	db := newTestDB(t)
	svc := newForumService(db)
	ctx := context.Background()

	member := createUser(t, db, "member", authz.RoleMember)
	admin := createUser(t, db, "admin", authz.RoleAdmin)
	board := seedBoard(t, svc, "Announcements")

	require.NoError(t, svc.SetBoardAdminOnly(ctx, admin.ID, board.ID, true, ""))

	_, err := svc.CreateTopic(ctx, subjectFor(member), &CreateTopicInput{
		BoardID: board.ID, Title: "nope", Body: "body",
	})
	assert.ErrorIs(t, err, ErrBoardRestricted)

	_, err = svc.CreateTopic(ctx, subjectFor(admin), &CreateTopicInput{
		BoardID: board.ID, Title: "patch notes", Body: "body",
	})
	assert.NoError(t, err)
}

func TestForumHiddenBoardsFiltered(t *testing.T) {
	db := newTestDB(t)
	svc := newForumService(db)
	ctx := context.Background()

	admin := createUser(t, db, "admin", authz.RoleAdmin)
	visible := seedBoard(t, svc, "Visible")
	hidden := seedBoard(t, svc, "Hidden")

	require.NoError(t, svc.SetBoardHidden(ctx, admin.ID, hidden.ID, true, ""))
	// hiding twice is a no-op and must not double the audit trail
	require.NoError(t, svc.SetBoardHidden(ctx, admin.ID, hidden.ID, true, ""))
	assert.EqualValues(t, 1, auditCount(t, db, models.AuditBoardVisibility))

	categories, err := svc.ListCategories(ctx, false)
	require.NoError(t, err)

	var boardIDs []uint
	for _, cat := range categories {
		for _, b := range cat.Boards {
			boardIDs = append(boardIDs, b.ID)
		}
	}
	assert.Contains(t, boardIDs, visible.ID)
	assert.NotContains(t, boardIDs, hidden.ID)

	// staff view keeps everything
	categories, err = svc.ListCategories(ctx, true)
	require.NoError(t, err)
	boardIDs = boardIDs[:0]
	for _, cat := range categories {
		for _, b := range cat.Boards {
			boardIDs = append(boardIDs, b.ID)
		}
	}
	assert.Contains(t, boardIDs, hidden.ID)
}

func TestForumDeleteTopicTrashBoard(t *testing.T) {
	db := newTestDB(t)
	svc := newForumService(db)
	ctx := context.Background()

	author := createUser(t, db, "author", authz.RoleMember)
	admin := createUser(t, db, "admin", authz.RoleAdmin)
	board := seedBoard(t, svc, "General")
	trash := seedBoard(t, svc, "Trash")

	topic, err := svc.CreateTopic(ctx, subjectFor(author), &CreateTopicInput{
		BoardID: board.ID, Title: "doomed", Body: "body",
	})
	require.NoError(t, err)

	// without a trash board the topic is soft deleted
	require.NoError(t, svc.DeleteTopic(ctx, admin.ID, topic.ID, ""))
	_, err = svc.GetTopic(ctx, topic.ID)
	assert.ErrorIs(t, err, ErrTopicNotFound)

	// with one configured the topic is moved instead
	require.NoError(t, svc.SetTrashBoard(ctx, admin.ID, trash.ID, ""))

	topic2, err := svc.CreateTopic(ctx, subjectFor(author), &CreateTopicInput{
		BoardID: board.ID, Title: "doomed too", Body: "body",
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteTopic(ctx, admin.ID, topic2.ID, ""))

	moved, err := svc.GetTopic(ctx, topic2.ID)
	require.NoError(t, err)
	assert.Equal(t, trash.ID, moved.BoardID)

	// deleting a topic already in the trash removes it for good
	require.NoError(t, svc.DeleteTopic(ctx, admin.ID, topic2.ID, ""))
	_, err = svc.GetTopic(ctx, topic2.ID)
	assert.ErrorIs(t, err, ErrTopicNotFound)
}

func TestForumListTopicsPinnedFirst(t *testing.T) {
	db := newTestDB(t)
	svc := newForumService(db)
	ctx := context.Background()

	author := createUser(t, db, "author", authz.RoleMember)
	mod := createUser(t, db, "mod", authz.RoleModerator)
	board := seedBoard(t, svc, "General")

	first, err := svc.CreateTopic(ctx, subjectFor(author), &CreateTopicInput{BoardID: board.ID, Title: "old", Body: "a"})
	require.NoError(t, err)
	_, err = svc.CreateTopic(ctx, subjectFor(author), &CreateTopicInput{BoardID: board.ID, Title: "new", Body: "b"})
	require.NoError(t, err)

	pinned, err := svc.TogglePin(ctx, mod.ID, first.ID, "")
	require.NoError(t, err)
	assert.True(t, pinned)

	topics, total, err := svc.ListTopics(ctx, board.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, topics, 2)
	assert.Equal(t, first.ID, topics[0].ID, "pinned topic sorts first")
}
