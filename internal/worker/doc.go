// Package worker implements the render worker lifecycle and Redis Streams integration.
//
// The worker reads render requests from a Redis Stream through a consumer
// group, processes them and publishes the results to a result stream.
//
// Example usage:
//
//	cfg, _ := config.Load()
//	redisClient := redis.NewClient(&redis.Options{...})
//	proc := processor.NewProcessor(template.NewEngine(), logger)
//
//	w := worker.NewWorker(cfg, redisClient, proc, logger)
//	if err := w.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop(ctx)
//
// Stream entries carry a single "data" field holding JSON:
//
//	XADD prompt.render * data '{"template":"Hi {{Name}}","values":{"Name":"Ada"}}'
//
// Results go to RESULT_STREAM, failures to RESULT_STREAM + ".errors". Every
// entry is acknowledged, including the ones that fail.
//
// Health checks are provided via a separate HTTP server:
//
//	healthServer := worker.NewHealthServer(cfg, redisClient, logger)
//	healthServer.Start()
//	defer healthServer.Stop(ctx)
package worker
