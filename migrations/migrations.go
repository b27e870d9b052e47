// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migrations embeds the SQL schema for the books and reviews tables.
package migrations

import "embed"

// FS holds the golang-migrate NNNNNN_name.{up,down}.sql files.
//
//go:embed *.sql
var FS embed.FS
