// Package dataset holds the reference dataset used to enumerate the legal
// values of categorical inputs. Concrete sources (CSV, SQLite) live in
// infra/dataset and register themselves by type name.
package dataset
