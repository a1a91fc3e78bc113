package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const logTimestampLayout = "15:04:05.000"

// renderValue formats an attribute value for console output. Durations are
// rounded to milliseconds since engine timings never need finer detail. When
// bare is set strings are written unquoted, as in the line prefix.
func renderValue(v slog.Value, bare bool) string {
	v = v.Resolve()
	var s string
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return v.Time().In(time.Local).Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if bare || !strings.ContainsFunc(s, needsQuote) && s != "" {
		return s
	}
	return strconv.Quote(s)
}

func needsQuote(r rune) bool {
	return r <= ' ' || r == '=' || r == '"'
}
