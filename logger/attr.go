package logger

import (
	"log/slog"
	"path/filepath"

	"github.com/fatih/color"
)

var levelColors = map[slog.Level]func(string, ...any) string{
	slog.LevelDebug: color.WhiteString,
	slog.LevelInfo:  color.BlueString,
	slog.LevelWarn:  color.YellowString,
	slog.LevelError: color.RedString,
}

// ColorizeLevel is a ReplaceAttr function for a [log/slog.HandlerOptions]
// printing the level of a record in a color matching its importance.
func ColorizeLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.LevelKey {
		return a
	}

	lvl, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}

	colorizer, ok := levelColors[lvl]
	if !ok {
		colorizer = color.MagentaString
	}

	return slog.String(slog.LevelKey, colorizer("%s", lvl))
}

// DeleteLevelAttr is a ReplaceAttr function dropping the level of a record.
func DeleteLevelAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.LevelKey {
		return slog.Attr{}
	}

	return a
}

// DeleteMessageAttr is a ReplaceAttr function dropping the message of a record.
func DeleteMessageAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.MessageKey {
		return slog.Attr{}
	}

	return a
}

// TruncSourceAttr is a ReplaceAttr function
// shortening the file of a record's source to the file and the directory it is in,
// e.g.:
//
//	/home/dlk/my-project/main.go => my-project/main.go
//	/home/dlk/my-project/internal/internal.go => internal/internal.go
func TruncSourceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.SourceKey {
		return a
	}

	src, ok := a.Value.Any().(*slog.Source)
	if !ok || src == nil {
		return a
	}

	dir, file := filepath.Split(src.File)
	trunc := *src
	trunc.File = filepath.Join(filepath.Base(dir), file)

	return slog.Any(slog.SourceKey, &trunc)
}
