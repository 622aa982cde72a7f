package db

import _ "embed"

//go:embed schema.sql
var schema string

// Schema returns the DDL applied by deployment tooling and the e2e suite.
func Schema() string {
	return schema
}
