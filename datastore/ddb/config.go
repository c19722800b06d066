/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	tserrors "github.com/suparena/tablestore/errors"
)

// Config holds the DynamoDB backend settings.
type Config struct {
	// AccessKey and SecretKey select static credentials when both are set.
	// Leave empty to use the default AWS credential chain.
	AccessKey string `env:"AWS_ACCESS_KEY"`
	SecretKey string `env:"AWS_SECRET_KEY"`

	// Region is the AWS region hosting the table.
	Region string `env:"AWS_REGION" envDefault:"us-east-1"`

	// TableName is the DynamoDB table backing the store.
	TableName string `env:"AWS_DDB_TABLE"`

	// Logger receives operational logging. Defaults to a no-op logger.
	Logger *zap.Logger `env:"-"`
}

// ConfigFromEnv loads settings from environment variables.
func ConfigFromEnv() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

// validate fills defaults and rejects unusable settings.
func (c *Config) validate() error {
	if c.TableName == "" {
		return tserrors.NewValidationError("tableName", "must not be empty")
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return nil
}
