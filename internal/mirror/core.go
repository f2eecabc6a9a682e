package mirror

import (
	"context"
	"html"
	"strings"

	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

// Core is a zapcore.Core that forwards entries to a Sink. Only the level,
// message and the "error" field are rendered; other fields never leave the
// process.
type Core struct {
	zapcore.LevelEnabler
	sink    Sink
	limiter *rate.Limiter
	errText string
}

// NewCore mirrors entries enabled by level, at most rps per second. Excess
// entries are dropped.
func NewCore(sink Sink, level zapcore.LevelEnabler, rps float64) *Core {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &Core{
		LevelEnabler: level,
		sink:         sink,
		limiter:      rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	if text := errorText(fields); text != "" {
		clone.errText = text
	}
	return &clone
}

func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	if !c.limiter.Allow() {
		return nil
	}
	errText := errorText(fields)
	if errText == "" {
		errText = c.errText
	}
	return c.sink.Publish(context.Background(), Render(ent, errText))
}

func (c *Core) Sync() error { return nil }

// Render formats an entry as an HTML chat message.
func Render(ent zapcore.Entry, errText string) string {
	var b strings.Builder
	b.WriteString("<b>")
	b.WriteString(ent.Level.CapitalString())
	b.WriteString("</b> ")
	b.WriteString(html.EscapeString(ent.Message))
	if errText != "" {
		b.WriteString("\n<code>")
		b.WriteString(html.EscapeString(errText))
		b.WriteString("</code>")
	}
	return b.String()
}

func errorText(fields []zapcore.Field) string {
	for _, f := range fields {
		if f.Key != "error" || f.Type != zapcore.ErrorType {
			continue
		}
		if err, ok := f.Interface.(error); ok {
			return err.Error()
		}
	}
	return ""
}
