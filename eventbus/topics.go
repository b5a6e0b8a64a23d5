package eventbus

var (
	TopicSummarizationEvents = NewTopic("yt-summary.summarization.events")
)

var AllTopics = []Topic{
	TopicSummarizationEvents,
}
