package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

var (
	bearerPattern   = regexp.MustCompile(`(?i)^bearer\s+.+$`)
	basicPattern    = regexp.MustCompile(`(?i)^basic\s+.+$`)
	redisURLPattern = regexp.MustCompile(`^rediss?://[^:@/]*:[^@/]+@`)
)

// DefaultRedactOptions masks credentials that can reach the logs: the
// Redis password from storage config, auth headers echoed by the feed
// client, and Redis URLs with embedded credentials.
func DefaultRedactOptions() []masq.Option {
	return []masq.Option{
		masq.WithFieldName("password"),
		masq.WithFieldName("redis_password"),
		masq.WithFieldName("RedisPassword"),
		masq.WithFieldName("authorization"),
		masq.WithFieldName("Authorization"),
		masq.WithFieldName("cookie"),
		masq.WithFieldName("token"),
		masq.WithFieldPrefix("secret"),
		masq.WithRegex(bearerPattern),
		masq.WithRegex(basicPattern),
		masq.WithRegex(redisURLPattern),
	}
}

// NewReplaceAttr returns a slog ReplaceAttr that applies DefaultRedactOptions
// plus any extra options.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(DefaultRedactOptions(), opts...)...)
}
