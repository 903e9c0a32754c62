// Package mongo connects to the MongoDB deployment that stores notifications.
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	store, err := notifications.NewMongoStorage(ctx, db)
//
// New retries the connect+ping sequence RetryAttempts times, waiting
// RetryInterval between attempts. Healthcheck returns a readiness probe.
package mongo
