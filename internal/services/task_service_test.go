package services

import (
	"testing"

	"github.com/hxkterminal/taskboard-api/internal/models"
	"github.com/hxkterminal/taskboard-api/internal/repository"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskServiceTestSuite exercises the lifecycle state machine against an
// in-memory database.
type TaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *TaskService
}

// SetupTest runs before each test
func (suite *TaskServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskAcceptance{},
	)
	suite.Require().NoError(err)

	suite.service = NewTaskService(repository.NewTaskRepository(suite.db))
}

// TearDownTest runs after each test
func (suite *TaskServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskServiceTestSuite) createTestUser(username string) *models.User {
	user := &models.User{
		Username:     username,
		PasswordHash: "hashedpassword",
	}
	suite.db.Create(user)
	return user
}

func (suite *TaskServiceTestSuite) createTask(publisherID uint64, kind models.TaskKind, maxAccept int) *models.Task {
	task, err := suite.service.CreateTask(CreateTaskInput{
		Title:          "Test Task",
		Description:    "Test Description",
		Kind:           kind,
		MaxAcceptCount: maxAccept,
		PublisherID:    publisherID,
	})
	suite.Require().NoError(err)
	return task
}

func (suite *TaskServiceTestSuite) TestCreateTask_PersonalForcesSingleSlot() {
	publisher := suite.createTestUser("publisher")

	task := suite.createTask(publisher.ID, models.TaskKindPersonal, 5)

	suite.Equal(1, task.MaxAcceptCount)
	suite.Equal(models.TaskStatusAvailable, task.Status)
}

func (suite *TaskServiceTestSuite) TestCreateTask_TeamKeepsRequestedSlots() {
	publisher := suite.createTestUser("publisher")

	task := suite.createTask(publisher.ID, models.TaskKindTeam, 3)

	suite.Equal(3, task.MaxAcceptCount)
}

func (suite *TaskServiceTestSuite) TestCreateTask_DefaultsAndTags() {
	publisher := suite.createTestUser("publisher")

	task, err := suite.service.CreateTask(CreateTaskInput{
		Title:       "Tagged",
		Description: "with tags",
		Tags:        []string{"urgent", "backend"},
		PublisherID: publisher.ID,
	})
	suite.Require().NoError(err)

	suite.Equal(models.TaskKindPersonal, task.Kind)
	suite.Equal(2, task.Priority)
	suite.Equal([]string{"urgent", "backend"}, task.TagList())
}

func (suite *TaskServiceTestSuite) TestCreateTask_TitleRequired() {
	publisher := suite.createTestUser("publisher")

	_, err := suite.service.CreateTask(CreateTaskInput{
		Description: "no title",
		PublisherID: publisher.ID,
	})
	suite.ErrorIs(err, ErrTitleRequired)
}

func (suite *TaskServiceTestSuite) TestAcceptTask_MovesToInProgress() {
	publisher := suite.createTestUser("publisher")
	worker := suite.createTestUser("worker")
	task := suite.createTask(publisher.ID, models.TaskKindPersonal, 1)

	updated, err := suite.service.AcceptTask(task.ID, worker.ID)
	suite.Require().NoError(err)

	suite.Equal(models.TaskStatusInProgress, updated.Status)
	suite.Len(updated.Acceptances, 1)
	suite.Equal(models.AcceptanceStatusInProgress, updated.Acceptances[0].Status)
}

func (suite *TaskServiceTestSuite) TestAcceptTask_AlreadyAccepted() {
	publisher := suite.createTestUser("publisher")
	worker := suite.createTestUser("worker")
	task := suite.createTask(publisher.ID, models.TaskKindTeam, 2)

	_, err := suite.service.AcceptTask(task.ID, worker.ID)
	suite.Require().NoError(err)

	_, err = suite.service.AcceptTask(task.ID, worker.ID)
	suite.ErrorIs(err, ErrAlreadyAccepted)
}

func (suite *TaskServiceTestSuite) TestAcceptTask_CapacityExceeded() {
	publisher := suite.createTestUser("publisher")
	u2 := suite.createTestUser("u2")
	u3 := suite.createTestUser("u3")
	u4 := suite.createTestUser("u4")
	task := suite.createTask(publisher.ID, models.TaskKindTeam, 2)

	_, err := suite.service.AcceptTask(task.ID, u2.ID)
	suite.Require().NoError(err)
	_, err = suite.service.AcceptTask(task.ID, u3.ID)
	suite.Require().NoError(err)

	_, err = suite.service.AcceptTask(task.ID, u4.ID)
	suite.ErrorIs(err, ErrCapacityExceeded)
}

func (suite *TaskServiceTestSuite) TestAcceptTask_NotFound() {
	worker := suite.createTestUser("worker")

	_, err := suite.service.AcceptTask(9999, worker.ID)
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestCompleteTask_SingleSlotCompletesTask() {
	publisher := suite.createTestUser("publisher")
	worker := suite.createTestUser("worker")
	task := suite.createTask(publisher.ID, models.TaskKindPersonal, 1)

	_, err := suite.service.AcceptTask(task.ID, worker.ID)
	suite.Require().NoError(err)

	updated, err := suite.service.CompleteTask(task.ID, worker.ID)
	suite.Require().NoError(err)

	suite.Equal(models.TaskStatusCompleted, updated.Status)
	suite.Equal(models.AcceptanceStatusCompleted, updated.Acceptances[0].Status)
}

func (suite *TaskServiceTestSuite) TestCompleteTask_WaitsForAllAcceptances() {
	publisher := suite.createTestUser("publisher")
	u2 := suite.createTestUser("u2")
	u3 := suite.createTestUser("u3")
	task := suite.createTask(publisher.ID, models.TaskKindTeam, 2)

	_, err := suite.service.AcceptTask(task.ID, u2.ID)
	suite.Require().NoError(err)
	_, err = suite.service.AcceptTask(task.ID, u3.ID)
	suite.Require().NoError(err)

	updated, err := suite.service.CompleteTask(task.ID, u2.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusInProgress, updated.Status)

	updated, err = suite.service.CompleteTask(task.ID, u3.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusCompleted, updated.Status)
}

func (suite *TaskServiceTestSuite) TestCompleteTask_NotAccepted() {
	publisher := suite.createTestUser("publisher")
	worker := suite.createTestUser("worker")
	task := suite.createTask(publisher.ID, models.TaskKindPersonal, 1)

	_, err := suite.service.CompleteTask(task.ID, worker.ID)
	suite.ErrorIs(err, ErrNotAccepted)
}

func (suite *TaskServiceTestSuite) TestAbandonTask_RevertsToAvailable() {
	publisher := suite.createTestUser("publisher")
	worker := suite.createTestUser("worker")
	task := suite.createTask(publisher.ID, models.TaskKindPersonal, 1)

	_, err := suite.service.AcceptTask(task.ID, worker.ID)
	suite.Require().NoError(err)

	updated, err := suite.service.AbandonTask(task.ID, worker.ID)
	suite.Require().NoError(err)

	suite.Equal(models.TaskStatusAvailable, updated.Status)
	suite.Len(updated.Acceptances, 0)
}

func (suite *TaskServiceTestSuite) TestAbandonTask_KeepsOtherAcceptances() {
	publisher := suite.createTestUser("publisher")
	u2 := suite.createTestUser("u2")
	u3 := suite.createTestUser("u3")
	task := suite.createTask(publisher.ID, models.TaskKindTeam, 2)

	_, err := suite.service.AcceptTask(task.ID, u2.ID)
	suite.Require().NoError(err)
	_, err = suite.service.AcceptTask(task.ID, u3.ID)
	suite.Require().NoError(err)

	updated, err := suite.service.AbandonTask(task.ID, u2.ID)
	suite.Require().NoError(err)

	// One acceptance remains, so the task stays inProgress.
	suite.Equal(models.TaskStatusInProgress, updated.Status)
	suite.Require().Len(updated.Acceptances, 1)
	suite.Equal(u3.ID, updated.Acceptances[0].UserID)
}

func (suite *TaskServiceTestSuite) TestAbandonTask_NotAccepted() {
	publisher := suite.createTestUser("publisher")
	worker := suite.createTestUser("worker")
	task := suite.createTask(publisher.ID, models.TaskKindPersonal, 1)

	_, err := suite.service.AbandonTask(task.ID, worker.ID)
	suite.ErrorIs(err, ErrNotAccepted)
}

func (suite *TaskServiceTestSuite) TestReacceptAfterComplete_Conflicts() {
	publisher := suite.createTestUser("u1")
	worker := suite.createTestUser("u2")
	task := suite.createTask(publisher.ID, models.TaskKindPersonal, 1)

	_, err := suite.service.AcceptTask(task.ID, worker.ID)
	suite.Require().NoError(err)
	updated, err := suite.service.CompleteTask(task.ID, worker.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusCompleted, updated.Status)

	_, err = suite.service.AcceptTask(task.ID, worker.ID)
	suite.ErrorIs(err, ErrAlreadyAccepted)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_OnlyPublisher() {
	publisher := suite.createTestUser("publisher")
	other := suite.createTestUser("other")
	task := suite.createTask(publisher.ID, models.TaskKindPersonal, 1)

	title := "New Title"
	_, err := suite.service.UpdateTask(task.ID, other.ID, UpdateTaskInput{Title: &title})
	suite.ErrorIs(err, ErrNotPublisher)

	updated, err := suite.service.UpdateTask(task.ID, publisher.ID, UpdateTaskInput{Title: &title})
	suite.Require().NoError(err)
	suite.Equal("New Title", updated.Title)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_PartialLeavesOtherFields() {
	publisher := suite.createTestUser("publisher")
	task := suite.createTask(publisher.ID, models.TaskKindTeam, 4)

	priority := 1
	updated, err := suite.service.UpdateTask(task.ID, publisher.ID, UpdateTaskInput{Priority: &priority})
	suite.Require().NoError(err)

	suite.Equal(1, updated.Priority)
	suite.Equal("Test Task", updated.Title)
	suite.Equal(4, updated.MaxAcceptCount)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_PersonalCapacityStaysOne() {
	publisher := suite.createTestUser("publisher")
	task := suite.createTask(publisher.ID, models.TaskKindPersonal, 1)

	capacity := 10
	updated, err := suite.service.UpdateTask(task.ID, publisher.ID, UpdateTaskInput{MaxAcceptCount: &capacity})
	suite.Require().NoError(err)

	suite.Equal(1, updated.MaxAcceptCount)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_CannotRevertCompleted() {
	publisher := suite.createTestUser("publisher")
	worker := suite.createTestUser("worker")
	task := suite.createTask(publisher.ID, models.TaskKindPersonal, 1)

	_, err := suite.service.AcceptTask(task.ID, worker.ID)
	suite.Require().NoError(err)
	_, err = suite.service.CompleteTask(task.ID, worker.ID)
	suite.Require().NoError(err)

	title := "Renamed After Completion"
	updated, err := suite.service.UpdateTask(task.ID, publisher.ID, UpdateTaskInput{Title: &title})
	suite.Require().NoError(err)

	suite.Equal("Renamed After Completion", updated.Title)
	suite.Equal(models.TaskStatusCompleted, updated.Status)
}

func (suite *TaskServiceTestSuite) TestDeleteTask_OnlyPublisherAndCascades() {
	publisher := suite.createTestUser("publisher")
	worker := suite.createTestUser("worker")
	task := suite.createTask(publisher.ID, models.TaskKindTeam, 2)

	_, err := suite.service.AcceptTask(task.ID, worker.ID)
	suite.Require().NoError(err)

	err = suite.service.DeleteTask(task.ID, worker.ID)
	suite.ErrorIs(err, ErrNotPublisher)

	err = suite.service.DeleteTask(task.ID, publisher.ID)
	suite.Require().NoError(err)

	_, err = suite.service.GetTask(task.ID)
	suite.ErrorIs(err, ErrTaskNotFound)

	var count int64
	suite.db.Model(&models.TaskAcceptance{}).Where("task_id = ?", task.ID).Count(&count)
	suite.EqualValues(0, count)
}

func (suite *TaskServiceTestSuite) TestListTasks_Scopes() {
	publisher := suite.createTestUser("publisher")
	worker := suite.createTestUser("worker")

	first := suite.createTask(publisher.ID, models.TaskKindTeam, 2)
	second := suite.createTask(publisher.ID, models.TaskKindTeam, 2)

	_, err := suite.service.AcceptTask(first.ID, worker.ID)
	suite.Require().NoError(err)

	available, total, err := suite.service.ListTasks(ListTasksInput{
		UserID: worker.ID,
		Scope:  ScopeAvailable,
	})
	suite.Require().NoError(err)
	suite.EqualValues(1, total)
	suite.Require().Len(available, 1)
	suite.Equal(second.ID, available[0].ID)

	mine, total, err := suite.service.ListTasks(ListTasksInput{
		UserID: worker.ID,
		Scope:  ScopeMine,
	})
	suite.Require().NoError(err)
	suite.EqualValues(1, total)
	suite.Require().Len(mine, 1)
	suite.Equal(first.ID, mine[0].ID)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
