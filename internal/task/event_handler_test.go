package task

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exhibitlab/docent-api/internal/events"
)

type fakeFactory struct {
	task    Task
	err     error
	gotJob  uuid.UUID
	created bool
}

func (f *fakeFactory) CreateTask(jobID uuid.UUID) (Task, error) {
	f.created = true
	f.gotJob = jobID
	if f.err != nil {
		return nil, f.err
	}
	return f.task, nil
}

type fakeSubmitter struct {
	submitted []Task
	err       error
}

func (s *fakeSubmitter) Submit(_ context.Context, t Task) error {
	if s.err != nil {
		return s.err
	}
	s.submitted = append(s.submitted, t)
	return nil
}

func transcriptionEvent(t *testing.T, jobID string) *events.TaskRequestEvent {
	t.Helper()
	event, err := events.NewTaskRequestEvent(TaskTypeTranscription,
		map[string]string{"job_id": jobID})
	require.NoError(t, err)
	return event
}

func TestHandleEventCreatesAndSubmitsTask(t *testing.T) {
	t.Parallel()

	jobID := uuid.New()
	factory := &fakeFactory{task: newStubTask(nil)}
	submitter := &fakeSubmitter{}
	handler := NewTaskFactoryEventHandler(factory, submitter, testLogger())

	err := handler.HandleEvent(context.Background(), transcriptionEvent(t, jobID.String()))
	require.NoError(t, err)

	assert.Equal(t, jobID, factory.gotJob)
	require.Len(t, submitter.submitted, 1)
	assert.Equal(t, factory.task.ID(), submitter.submitted[0].ID())
}

func TestHandleEventIgnoresOtherEventTypes(t *testing.T) {
	t.Parallel()

	factory := &fakeFactory{task: newStubTask(nil)}
	submitter := &fakeSubmitter{}
	handler := NewTaskFactoryEventHandler(factory, submitter, testLogger())

	event, err := events.NewTaskRequestEvent("unrelated", nil)
	require.NoError(t, err)

	require.NoError(t, handler.HandleEvent(context.Background(), event))
	assert.False(t, factory.created)
	assert.Empty(t, submitter.submitted)
}

func TestHandleEventInvalidJobID(t *testing.T) {
	t.Parallel()

	handler := NewTaskFactoryEventHandler(&fakeFactory{}, &fakeSubmitter{}, testLogger())
	err := handler.HandleEvent(context.Background(), transcriptionEvent(t, "not-a-uuid"))
	assert.Error(t, err)
}

func TestHandleEventFactoryFailure(t *testing.T) {
	t.Parallel()

	factoryErr := errors.New("factory broken")
	handler := NewTaskFactoryEventHandler(
		&fakeFactory{err: factoryErr}, &fakeSubmitter{}, testLogger())

	err := handler.HandleEvent(context.Background(), transcriptionEvent(t, uuid.NewString()))
	assert.ErrorIs(t, err, factoryErr)
}

func TestHandleEventSubmitFailure(t *testing.T) {
	t.Parallel()

	submitErr := errors.New("queue full")
	handler := NewTaskFactoryEventHandler(
		&fakeFactory{task: newStubTask(nil)}, &fakeSubmitter{err: submitErr}, testLogger())

	err := handler.HandleEvent(context.Background(), transcriptionEvent(t, uuid.NewString()))
	assert.ErrorIs(t, err, submitErr)
}
