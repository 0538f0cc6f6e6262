package pipeline

type Request struct {
	Text string `json:"text"`
	Tid  string `json:"tid"`
}

// Pipeline runs one request through every configured dictionary and delivers
// the marshalled response on the returned channel.
type Pipeline func(request Request) <-chan string
