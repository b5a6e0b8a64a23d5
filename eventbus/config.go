package eventbus

import (
	"os"
	"strconv"
)

// GetBrokers returns Kafka bootstrap servers from env KAFKA_BOOTSTRAP_SERVERS
func GetBrokers() string {
	v := os.Getenv("KAFKA_BOOTSTRAP_SERVERS")
	if v == "" {
		panic("KAFKA_BOOTSTRAP_SERVERS environment variable is required")
	}
	return v
}

// GetGroupID returns consumer group id from env KAFKA_GROUP_ID
func GetGroupID() string {
	v := os.Getenv("KAFKA_GROUP_ID")
	if v == "" {
		panic("KAFKA_GROUP_ID environment variable is required")
	}
	return v
}

func getKafkaMessageMaxBytesFromEnv() int {
	return positiveIntFromEnv("KAFKA_MESSAGE_MAX_BYTES")
}

func getKafkaMaxPollIntervalMsFromEnv() int {
	return positiveIntFromEnv("KAFKA_MAX_POLL_INTERVAL_MS")
}

func positiveIntFromEnv(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
