package textsteg

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// OutputLevel is the amount of output the file-level operations provide.
type OutputLevel int

const (
	OutputNothing OutputLevel = iota // No output at all.
	OutputSteps   OutputLevel = iota // Each step of the operation as it starts.
	OutputInfo    OutputLevel = iota // Steps, plus details like image dimensions and capacity.
	OutputDebug   OutputLevel = iota // Everything, including the raw frame header.
)

// levelInfo sits between slog's Debug and Info so OutputInfo can be filtered on its own.
const levelInfo = slog.LevelInfo - 2

// Returns the name of the output level, or "<unknown>" if unknown.
func (lvl OutputLevel) String() string {
	switch lvl {
	case OutputNothing:
		return "nothing"
	case OutputSteps:
		return "steps"
	case OutputInfo:
		return "info"
	case OutputDebug:
		return "debug"
	default:
		return "<unknown>"
	}
}

// StringToOutputLevel parses a level name, falling back to OutputSteps if the string is not recognized.
func StringToOutputLevel(str string) OutputLevel {
	switch strings.ToLower(str) {
	case "nothing", "none", "quiet":
		return OutputNothing
	case "info":
		return OutputInfo
	case "debug":
		return OutputDebug
	default:
		return OutputSteps
	}
}

func (lvl OutputLevel) slogLevel() slog.Level {
	switch {
	case lvl >= OutputDebug:
		return slog.LevelDebug
	case lvl == OutputInfo:
		return levelInfo
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a text logger writing to w that lets through what lvl asks for.
func NewLogger(w io.Writer, lvl OutputLevel) *slog.Logger {
	if lvl <= OutputNothing {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl.slogLevel(),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && len(groups) == 0 {
				if l, ok := a.Value.Any().(slog.Level); ok && l == levelInfo {
					a.Value = slog.StringValue("DETAIL")
				}
			}
			return a
		},
	}))
}

// logInfo logs at the level reserved for OutputInfo.
func logInfo(logger *slog.Logger, msg string, args ...any) {
	logger.Log(context.Background(), levelInfo, msg, args...)
}
