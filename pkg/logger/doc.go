// Package logger builds the structured slog loggers used by pulse services
// and provides attribute helpers that keep key names consistent across the
// publisher, the fan-out consumer and the delivery bridge.
//
// New creates a *slog.Logger from functional options. The handler is either
// slog.NewTextHandler (development) or slog.NewJSONHandler (everything else)
// and is wrapped by a decorator that injects attributes pulled from the
// context on every record.
//
// # Usage
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "notifier"),
//		logger.WithContextValue("consumer", consumerKey{}),
//	)
//	logger.SetAsDefault(log)
//
//	log.LogAttrs(ctx, slog.LevelInfo, "notification delivered",
//		logger.Room(room),
//		logger.NotificationID(n.ID),
//	)
//
// Helpers such as Error return an empty slog.Attr for nil input, so they can
// be passed unconditionally.
package logger
