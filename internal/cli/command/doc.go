// Package command provides CLI command definitions for tracklog-cli.
//
// tracklog-cli works directly on the snapshot directories, so it needs no
// running server:
//
//	tracklog-cli latest --kind data
//	tracklog-cli latest --all -o json
//	tracklog-cli files --kind location
//	tracklog-cli show --file /var/lib/tracklog/location/1700000000000.json
//	tracklog-cli record location --user u1 --lat 52.52 --long 13.40
//	tracklog-cli hash-password
//
// Directories and windows come from the server configuration file given
// with --config, and can be overridden with flags.
package command
