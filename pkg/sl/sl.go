package sl

import "log/slog"

func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{Key: "err", Value: slog.StringValue("<nil>")}
	}
	return slog.Attr{
		Key:   "err",
		Value: slog.StringValue(err.Error()),
	}
}

// Op tags a log line with the operation that emitted it.
func Op(op string) slog.Attr {
	return slog.String("op", op)
}
