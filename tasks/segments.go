package tasks

import (
	"segmenta.io/wbs/redis"
)

const SegmentsDB redis.DB = 2

type TaskStatus string

const (
	TaskStatusProcessing       TaskStatus = "processing"
	TaskStatusSubmitted        TaskStatus = "submitted"
	TaskStatusStarted          TaskStatus = "started"
	TaskStatusFailed           TaskStatus = "failed"
	TaskStatusCompletedSuccess TaskStatus = "completed - success"
	TaskStatusCompletedFailure TaskStatus = "completed - failure"
	TaskStatusCanceled         TaskStatus = "canceled"
)

func (s TaskStatus) Complete() bool {
	return s == TaskStatusCompletedSuccess || s == TaskStatusCompletedFailure || s == TaskStatusCanceled
}

func (s TaskStatus) Submitted() bool {
	return s == TaskStatusSubmitted || s == TaskStatusStarted || s == TaskStatusProcessing
}

// SegmentTask is one text chunk awaiting segmentation. The record is shared
// with the rest of the platform; fields this service does not model are
// preserved on update through the merge-patch path in the redis client.
type SegmentTask struct {
	DocID        string              `json:"document_id"`
	JobID        string              `json:"job_id"`
	TextFileKey  string              `json:"text_file_key"`
	TaskStatuses SegmentTaskStatuses `json:"task_statuses"`
}

type SegmentTaskStatuses struct {
	WBS SegmentTaskInfo `json:"wbs"`
}

type SegmentTaskInfo struct {
	ResultsFileKey string     `json:"results_file_key"`
	StartedAt      *string    `json:"started_at"`
	CompletedAt    *string    `json:"completed_at"`
	Attempts       int        `json:"attempts"`
	Status         TaskStatus `json:"status"`
	Dependencies   []string   `json:"dependencies"`
	ErrorMessages  []string   `json:"error_messages"`
}

type SegmentTasks struct {
	client redis.Client
}

func (tasks SegmentTasks) Get(redisKey string) (*SegmentTask, error) {
	var task SegmentTask
	err := tasks.client.GetDocument(redisKey, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks SegmentTasks) Update(redisKey string, updateFunc func(task *SegmentTask)) error {
	var task SegmentTask
	return tasks.client.UpdateDocument(redisKey, &task, func() {
		updateFunc(&task)
	})
}
