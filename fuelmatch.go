/*
Copyright 2024 FreightDesk Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package fuelmatch

import (
	"embed"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/freightdesk/fuelmatch/config"
	"github.com/freightdesk/fuelmatch/database"
	"github.com/freightdesk/fuelmatch/internal/redisconn"
)

// Fuelmatch is the main service struct: CSV ingestion, the matching
// pipeline, and the query facade all hang off it.
type Fuelmatch struct {
	datasource        database.IDataSource
	redis             redis.UniversalClient
	dateToleranceDays int
	lockWaitSeconds   int
}

//go:embed sql/*.sql
var SQLFiles embed.FS

// NewFuelmatch initializes the service from the loaded configuration
// and the provided datasource.
func NewFuelmatch(db database.IDataSource) (*Fuelmatch, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient, err := redisconn.NewRedisClient([]string{fmt.Sprintf("redis://%s", configuration.Redis.Dns)})
	if err != nil {
		return nil, err
	}

	return &Fuelmatch{
		datasource:        db,
		redis:             redisClient.Client(),
		dateToleranceDays: configuration.Matching.DateToleranceDays,
		lockWaitSeconds:   configuration.Matching.LockWaitSeconds,
	}, nil
}
