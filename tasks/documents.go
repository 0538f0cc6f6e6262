package tasks

import (
	"segmenta.io/wbs/redis"
)

const DocumentsDB redis.DB = 0

type DocumentTask struct {
	FailedTasks  []string            `json:"failed_tasks"`
	FailedChunks map[string][]string `json:"failed_chunks"`
}

type DocumentTaskCached struct {
	DocInfo     map[string]interface{} `json:"document_info"`
	FailedTasks []string               `json:"failed_tasks"`
	JobID       string                 `json:"job_id"`
	WorkType    string                 `json:"work_type"`
}

type DocumentTasks struct {
	client redis.Client
}

func (tasks DocumentTasks) Get(redisKey string) (*DocumentTask, error) {
	var task DocumentTask
	err := tasks.client.GetDocument(redisKey, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks DocumentTasks) GetCached(redisKey string) (*DocumentTaskCached, error) {
	var task DocumentTaskCached
	err := tasks.client.GetDocument(cachedPropertiesKey(redisKey), &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Update changes the document task and mirrors the shared fields onto its
// cached-properties copy, as the sequencer expects both to stay in sync.
func (tasks DocumentTasks) Update(redisKey string, updateFunc func(task *DocumentTask)) error {
	var task DocumentTask
	err := tasks.client.UpdateDocument(redisKey, &task, func() {
		updateFunc(&task)
	})
	if err != nil {
		return err
	}
	var cached DocumentTaskCached
	return tasks.client.UpdateDocument(cachedPropertiesKey(redisKey), &cached, func() {
		cached.FailedTasks = task.FailedTasks
	})
}
