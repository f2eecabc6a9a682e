package notify

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

var _ retryablehttp.LeveledLogger = leveledLogger{}

// leveledLogger routes retryablehttp's attempt logging into zap. The request
// URL carries the bot token, so any value containing it is masked.
type leveledLogger struct {
	s     *zap.SugaredLogger
	token string
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, l.scrub(kv)...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, l.scrub(kv)...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, l.scrub(kv)...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, l.scrub(kv)...) }

func (l leveledLogger) scrub(kv []interface{}) []interface{} {
	if l.token == "" {
		return kv
	}
	out := make([]interface{}, len(kv))
	for i, v := range kv {
		if s := fmt.Sprint(v); strings.Contains(s, l.token) {
			out[i] = strings.ReplaceAll(s, l.token, "<redacted>")
			continue
		}
		out[i] = v
	}
	return out
}
