package app

import "github.com/hibiken/asynq"

// AsynqRedisOpt builds the queue connection options from the Redis settings.
func AsynqRedisOpt(cfg *Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}
