package worker

import (
	"fmt"

	"segmenta.io/wbs/tasks"
)

type redisTransactions interface {
	getSegmentTask(redisKey string) (*tasks.SegmentTask, error)
	getJobTask(task *Task) (*tasks.JobTask, error)
	getDocTask(task *Task) (*tasks.DocumentTaskCached, error)
	getCachedResult(cacheKey string) (string, bool, error)
	putCachedResult(cacheKey string, response string) error
	onTaskStarted(task *Task) error
	onTaskCancelled(task *Task, errorMessages ...string) error
	onTaskExceededRetries(task *Task, maxRetries int) error
	onTaskFailedWithError(task *Task, err error) error
	onTaskComplete(task *Task) error
	close()
}

type redisClientWrapper struct {
	tasksClient *tasks.Client
}

func (wrapper *redisClientWrapper) close() {
	wrapper.tasksClient.Close()
}

func (wrapper *redisClientWrapper) onTaskStarted(task *Task) error {
	err := wrapper.tasksClient.Segments.Update(task.redisKey, func(task *tasks.SegmentTask) {
		task.TaskStatuses.WBS.Status = tasks.TaskStatusStarted
		task.TaskStatuses.WBS.Attempts += 1
		task.TaskStatuses.WBS.StartedAt = getFormattedNow()
		task.TaskStatuses.WBS.CompletedAt = nil
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskCancelled(task *Task, errorMessages ...string) error {
	err := wrapper.tasksClient.Segments.Update(task.redisKey, func(segmentTask *tasks.SegmentTask) {
		segmentTask.TaskStatuses.WBS.Status = tasks.TaskStatusCanceled
		segmentTask.TaskStatuses.WBS.StartedAt = getFormattedNow()
		segmentTask.TaskStatuses.WBS.CompletedAt = getFormattedNow()
		segmentTask.TaskStatuses.WBS.Attempts += 1
		segmentTask.TaskStatuses.WBS.ErrorMessages = append(
			segmentTask.TaskStatuses.WBS.ErrorMessages,
			errorMessages...,
		)
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskExceededRetries(task *Task, maxRetries int) error {
	err := wrapper.tasksClient.Documents.Update(task.segmentTask.DocID, func(docTask *tasks.DocumentTask) {
		docTask.FailedTasks = append(docTask.FailedTasks, "wbs")
		docTask.FailedChunks[task.redisKey] = append(docTask.FailedChunks[task.redisKey], "wbs")
	})
	if err != nil {
		return err
	}
	err = wrapper.tasksClient.Segments.Update(task.redisKey, func(segmentTask *tasks.SegmentTask) {
		segmentTask.TaskStatuses.WBS.Status = tasks.TaskStatusCompletedFailure
		segmentTask.TaskStatuses.WBS.StartedAt = getFormattedNow()
		segmentTask.TaskStatuses.WBS.CompletedAt = getFormattedNow()
		segmentTask.TaskStatuses.WBS.Attempts += 1
		segmentTask.TaskStatuses.WBS.ErrorMessages = append(
			segmentTask.TaskStatuses.WBS.ErrorMessages,
			fmt.Sprintf(
				"Task has exceeded retries. (Attempts: %d, max retries: %d )",
				segmentTask.TaskStatuses.WBS.Attempts,
				maxRetries,
			),
		)
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskFailedWithError(task *Task, err error) error {
	return wrapper.tasksClient.Segments.Update(task.redisKey, func(segmentTask *tasks.SegmentTask) {
		segmentTask.TaskStatuses.WBS.Status = tasks.TaskStatusFailed
		segmentTask.TaskStatuses.WBS.CompletedAt = getFormattedNow()
		segmentTask.TaskStatuses.WBS.ErrorMessages = append(segmentTask.TaskStatuses.WBS.ErrorMessages, err.Error())
	})
}

func (wrapper *redisClientWrapper) onTaskComplete(task *Task) error {
	return wrapper.tasksClient.Segments.Update(task.redisKey, func(segmentTask *tasks.SegmentTask) {
		if !segmentTask.TaskStatuses.WBS.Status.Complete() {
			segmentTask.TaskStatuses.WBS.Status = tasks.TaskStatusCompletedSuccess
		}
		segmentTask.TaskStatuses.WBS.CompletedAt = getFormattedNow()
		segmentTask.TaskStatuses.WBS.ResultsFileKey = getResultsFileKey(task)
	})
}

func (wrapper *redisClientWrapper) getSegmentTask(redisKey string) (*tasks.SegmentTask, error) {
	return wrapper.tasksClient.Segments.Get(redisKey)
}

func (wrapper *redisClientWrapper) getJobTask(task *Task) (*tasks.JobTask, error) {
	return wrapper.tasksClient.Jobs.GetCached(task.segmentTask.JobID)
}

func (wrapper *redisClientWrapper) getDocTask(task *Task) (*tasks.DocumentTaskCached, error) {
	return wrapper.tasksClient.Documents.GetCached(task.segmentTask.DocID)
}

func (wrapper *redisClientWrapper) getCachedResult(cacheKey string) (string, bool, error) {
	return wrapper.tasksClient.Results.Get(cacheKey)
}

func (wrapper *redisClientWrapper) putCachedResult(cacheKey string, response string) error {
	return wrapper.tasksClient.Results.Put(cacheKey, response)
}
