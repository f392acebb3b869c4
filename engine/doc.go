// Package engine provides helpers for working with the modernc.org/sqlite
// driver: opening connections and registering the SQL scalar functions used
// by the comparison history.
package engine
