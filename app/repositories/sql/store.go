// Package sql implements the repositories on a relational database through
// gorm. The schema comes from database/migrations; the unique index on
// orders.session_id makes CreateOnce atomic.
package sql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/database"
)

// NewStore builds the repositories over db. Store.Close closes the pool.
func NewStore(db *gorm.DB) *repositories.Store {
	return repositories.NewStore(
		&Products{db: db},
		&Users{db: db},
		&Carts{db: db},
		&Orders{db: db},
		func(ctx context.Context) error { return database.Ping(ctx, db) },
		func(context.Context) error { return database.Close(db) },
	)
}

var now = func() time.Time { return time.Now().UTC() }

func newID() string { return uuid.NewString() }

// duplicate markers for drivers whose errors gorm does not translate.
var duplicateMarkers = []string{
	"unique constraint failed",    // sqlite
	"duplicate key value",         // postgres
	"duplicate entry",             // mysql
	"cannot insert duplicate key", // sqlserver
	"violation of unique key",     // sqlserver
	"violation of primary key",    // sqlserver
}

// translate maps gorm errors onto the repository sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", repositories.ErrDuplicate, err)
	}
	msg := strings.ToLower(err.Error())
	for _, m := range duplicateMarkers {
		if strings.Contains(msg, m) {
			return fmt.Errorf("%w: %v", repositories.ErrDuplicate, err)
		}
	}
	return err
}
