package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnect_Validation(t *testing.T) {
	_, err := Connect(context.Background(), "")
	assert.Error(t, err)

	_, err = Connect(context.Background(), "invalid-dsn")
	assert.Error(t, err)
}

func TestMigrate_RequiresPool(t *testing.T) {
	err := Migrate(context.Background(), nil, nil)
	assert.EqualError(t, err, "database pool must not be nil")
}
