package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var base zerolog.Logger

func init() {
	Setup(os.Getenv("ENVIRONMENT"), os.Getenv("LOG_LEVEL"))
}

// Setup replaces the process logger. Development gets a colored console
// writer, everything else JSON lines on stdout.
func Setup(environment, level string) {
	var out io.Writer = os.Stdout
	if environment == "" || environment == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	}
	SetOutput(out, level)
}

// SetOutput is Setup with an explicit writer; tests use it to capture logs.
func SetOutput(out io.Writer, level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	base = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

func Info(format string, v ...interface{}) {
	base.Info().Msgf(format, v...)
}

func Error(format string, v ...interface{}) {
	base.Error().Msgf(format, v...)
}

func Debug(format string, v ...interface{}) {
	base.Debug().Msgf(format, v...)
}

func Warn(format string, v ...interface{}) {
	base.Warn().Msgf(format, v...)
}

// Fatal logs and exits the process.
func Fatal(format string, v ...interface{}) {
	base.Fatal().Msgf(format, v...)
}

// With returns a child logger carrying the given key/value pairs, for code
// that logs several lines about the same ticket or conversation.
func With(kv ...interface{}) zerolog.Logger {
	ctx := base.With()
	for i := 0; i+1 < len(kv); i += 2 {
		ctx = ctx.Interface(fmt.Sprint(kv[i]), kv[i+1])
	}
	return ctx.Logger()
}

// LogMediaError records a failed media transfer without surfacing it.
func LogMediaError(ticketID, sourceURL string, err error) {
	base.Warn().
		Str("ticket_id", ticketID).
		Str("source", redactURL(sourceURL)).
		Err(err).
		Msg("media ingestion failed")
}

// Telegram file links embed the bot token, strip everything after the host.
func redactURL(u string) string {
	if i := strings.Index(u, "/file/bot"); i >= 0 {
		return u[:i] + "/file/bot<redacted>"
	}
	return u
}
