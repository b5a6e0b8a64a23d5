package eventbus

import (
	"strconv"
	"strings"
	"time"
)

// ParseRetryDelayFromTopicName maps "<base>.retry.<n>" to RetryDelays[n-1].
func ParseRetryDelayFromTopicName(name string) (time.Duration, bool) {
	idx := strings.LastIndex(name, ".retry.")
	if idx == -1 || idx+7 >= len(name) {
		return 0, false
	}
	n, err := strconv.Atoi(name[idx+7:])
	if err != nil || n <= 0 || n > len(RetryDelays) {
		return 0, false
	}
	return RetryDelays[n-1], true
}
