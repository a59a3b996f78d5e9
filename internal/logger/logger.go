package logger

import "go.uber.org/zap"

// New builds a zap logger for the given environment name.
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
