package tasks

import (
	"fmt"

	"segmenta.io/wbs/redis"
)

type Client struct {
	Documents DocumentTasks
	Segments  SegmentTasks
	Jobs      JobTasks
	Results   ResultCache
}

// NewClient is a preferred way for working with TaskInfos
func NewClient() (Client, error) {
	docRedisClient, err := redis.NewClient(DocumentsDB)
	if err != nil {
		return Client{}, err
	}
	jobsRedisClient, err := redis.NewClient(JobsDB)
	if err != nil {
		return Client{}, err
	}
	segmentsRedisClient, err := redis.NewClient(SegmentsDB)
	if err != nil {
		return Client{}, err
	}
	resultsCache, err := NewResultCache()
	if err != nil {
		return Client{}, err
	}
	return Client{
		Documents: DocumentTasks{client: docRedisClient},
		Jobs:      JobTasks{client: jobsRedisClient},
		Segments:  SegmentTasks{client: segmentsRedisClient},
		Results:   resultsCache,
	}, nil
}

func (client *Client) Close() {
	_ = client.Segments.client.Close()
	_ = client.Documents.client.Close()
	_ = client.Jobs.client.Close()
	_ = client.Results.client.Close()
}

func cachedPropertiesKey(redisKey string) string {
	return fmt.Sprintf("%s-cached-properties", redisKey)
}
