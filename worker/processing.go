package worker

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"segmenta.io/wbs/pipeline"
	"segmenta.io/wbs/tasks"
	"segmenta.io/wbs/utils"
)

type Message struct {
	WorkType string `json:"work_type"`
	RedisKey string `json:"redis_key"`
	Sender   string `json:"sender"`
	Version  string `json:"version"`
}

type Task struct {
	delivery    *amqp.Delivery
	segmentTask *tasks.SegmentTask
	message     *Message
	redisKey    string
	wbsLogger   *zerolog.Logger
}

func (worker *Worker) processMessage(delivery *amqp.Delivery) {
	task, err := worker.createTask(delivery)
	rejectLogger := worker.wbsLogger.With().Str("message_id", delivery.MessageId).Logger()
	if err != nil {
		worker.wbsLogger.Err(err).
			Str("message_id", delivery.MessageId).
			Str("tid", string(delivery.Body)).
			Msg("Failed to create task for delivery")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.processTask(task); err != nil {
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.pingSequencer(task, *task.message); err != nil {
		task.wbsLogger.Err(err).Msg("Got error while sending message to sequencer queue")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.acknowledgeDelivery(delivery); err != nil {
		task.wbsLogger.Err(err).Msg("Failed to acknowledge delivery")
	}
	task.wbsLogger.Info().Msg("Finished processing RMQ message")
}

func (worker *Worker) createTask(delivery *amqp.Delivery) (*Task, error) {
	var message Message
	err := json.Unmarshal(delivery.Body, &message)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal message, got error %w", err)
	}
	segmentTask, err := worker.redis.getSegmentTask(message.RedisKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query segment task for message, got error %w", err)
	}
	taskLogger := worker.wbsLogger.With().Str("tid", message.RedisKey).Logger()
	task := Task{
		delivery:    delivery,
		segmentTask: segmentTask,
		redisKey:    message.RedisKey,
		message:     &message,
		wbsLogger:   &taskLogger,
	}
	return &task, nil
}

func (worker *Worker) processTask(task *Task) error {
	shouldPerform, err := worker.shouldPerformTask(task)
	if err != nil {
		task.wbsLogger.Err(err).
			Msg("Got error while trying to decide whether to run task")
		return err
	}
	if !shouldPerform {
		return nil
	}
	if err = worker.redis.onTaskStarted(task); err != nil {
		task.wbsLogger.Err(err).Msg("Failed to update task info")
		return fmt.Errorf("failed to update TaskInfo: %w", err)
	}
	if err = worker.runPipeline(task); err != nil {
		task.wbsLogger.Err(err).Msg("Got error while running pipeline")
		if err = worker.redis.onTaskFailedWithError(task, err); err != nil {
			return err
		}
		return nil
	}
	task.wbsLogger.Info().Msg("Saved results, marking task as complete")
	if err = worker.redis.onTaskComplete(task); err != nil {
		task.wbsLogger.Err(err).Msg("Got error while trying to mark task as complete")
		return err
	}
	return nil
}

func (worker *Worker) runPipeline(task *Task) (err error) {
	defer utils.RecoverWithError(&err)
	task.wbsLogger.Info().Msgf("Processing message from RMQ, attempt # %d", task.segmentTask.TaskStatuses.WBS.Attempts)
	data, err := worker.s3.getProcessedData(task)
	if err != nil {
		task.wbsLogger.Err(err).Caller().Msg("Could not fetch text data from s3")
		return fmt.Errorf("failed fetch data from s3: %w", err)
	}
	result, err := worker.segmentText(task, string(data))
	if err != nil {
		return err
	}
	task.wbsLogger.Info().Msg("Finished pipeline, saving results to s3")
	if err = worker.s3.saveResultsFile(task, result); err != nil {
		task.wbsLogger.Err(err).Msg("Got error while trying to save results")
		return err
	}
	return nil
}

// segmentText returns the response for the given text, consulting the result
// cache first. Cache failures are logged and the text is segmented anyway.
func (worker *Worker) segmentText(task *Task, text string) (string, error) {
	cacheKey := tasks.Key(worker.dictsID, text)
	cached, found, err := worker.redis.getCachedResult(cacheKey)
	if err != nil {
		task.wbsLogger.Err(err).Msg("Failed to query result cache, running pipeline")
	} else if found {
		task.wbsLogger.Info().Msg("Result cache hit, skipping pipeline")
		return cached, nil
	}
	request := pipeline.Request{
		Tid:  task.redisKey,
		Text: text,
	}
	result, ok := <-worker.ppln(request)
	if !ok {
		task.wbsLogger.Error().Msg("Pipeline channel was closed before returning anything")
		return "", errors.New("pipeline channel was closed before returning anything")
	}
	if err := worker.redis.putCachedResult(cacheKey, result); err != nil {
		task.wbsLogger.Err(err).Msg("Failed to store result in cache")
	}
	return result, nil
}

func (worker *Worker) shouldPerformTask(task *Task) (bool, error) {
	taskInfo := task.segmentTask.TaskStatuses.WBS
	taskLogger := task.wbsLogger

	if taskInfo.Status.Complete() {
		taskLogger.Info().Msg("Task is already done. (might indicate issue acking message with RMQ). Sending back to Sequencer.")
		return false, nil
	}
	taskJob, err := worker.redis.getJobTask(task)
	if err != nil {
		taskLogger.Err(err).Msg("Failed to query job task for segment task")
		return false, err
	}
	if taskJob.UserCanceled {
		taskLogger.Info().Msg("Job was canceled, no need to perform this task. Sending back to Sequencer.")
		err := worker.redis.onTaskCancelled(task)
		return false, err
	}
	var docTask *tasks.DocumentTaskCached
	if taskJob.StopDocumentsOnFailure {
		docTask, err = worker.redis.getDocTask(task)
		if err != nil {
			return false, err
		}
		if docTask == nil {
			return false, fmt.Errorf("document task not found")
		}
	}
	if taskJob.StopDocumentsOnFailure && len(docTask.FailedTasks) > 0 {
		failedTask := docTask.FailedTasks[0]
		taskLogger.Info().Msgf("Task is not required because the \"%s\" already completed failure "+
			"and document won't be processed successfully. Sending back to Sequencer.", failedTask)
		err := worker.redis.onTaskCancelled(
			task,
			fmt.Sprintf(
				"Task was marked as \"%s\" because of the current document has failed "+
					"in the \"%s\" worker and won't be processed successfully.",
				tasks.TaskStatusCanceled,
				failedTask,
			),
		)
		return false, err
	}
	if taskInfo.Attempts >= worker.config.TaskMaxRetries {
		taskLogger.Info().Msg("Segmentation task has exceeded retries. Sending back to Sequencer.")
		err = worker.redis.onTaskExceededRetries(task, worker.config.TaskMaxRetries)
		return false, err
	}
	return true, nil
}
