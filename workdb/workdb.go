//
// Copyright 2018 The Rsviz Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package workdb looks up per-task work unit counts in an auxiliary
// PostgreSQL database. The lookup is optional: runs without a
// configured database simply have no work-unit data.
package workdb

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// WorkDb is what a report run needs from the lookup database.
type WorkDb interface {
	LookupWorkUnits(taskID string) (total, processed int64, err error)
	Close() error
}

type pgWorkDb struct {
	dbConn *sql.DB
	sql1   *sql.Stmt
	prefix string
}

func sqlOpen(a, b string) (*sql.DB, error) {
	return sql.Open(a, b)
}

// InitDb connects to the work-units database. The prefix is prepended
// to the table name so several deployments can share one database.
func InitDb(connectString, prefix string) (WorkDb, error) {
	dbConn, err := sqlOpen("postgres", connectString)
	if err != nil {
		return nil, err
	}
	p := &pgWorkDb{dbConn: dbConn, prefix: prefix}
	if err := p.dbConn.Ping(); err != nil {
		return nil, err
	}
	if err := p.prepareSqlStatements(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *pgWorkDb) prepareSqlStatements() error {
	var err error
	table := pq.QuoteIdentifier(p.prefix + "work_units")
	if p.sql1, err = p.dbConn.Prepare(fmt.Sprintf(
		"SELECT units_total, units_processed FROM %s WHERE task_id = $1", table)); err != nil {
		return err
	}
	return nil
}

// LookupWorkUnits returns the work unit counts for a task. A task
// with no row resolves to (0, 0), which is the documented default.
func (p *pgWorkDb) LookupWorkUnits(taskID string) (total, processed int64, err error) {
	err = p.sql1.QueryRow(taskID).Scan(&total, &processed)
	if err == sql.ErrNoRows {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}
	return total, processed, nil
}

func (p *pgWorkDb) Close() error {
	return p.dbConn.Close()
}
