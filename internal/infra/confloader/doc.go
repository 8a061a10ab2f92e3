// Package confloader loads and watches tracklog configuration.
//
// Values are read with koanf from, in increasing priority:
//
//  1. Defaults already set on the target struct
//  2. A YAML file
//  3. Environment variables (TRACKLOG_ prefix)
//
// Environment keys use a double underscore between levels so that keys
// with underscores survive: TRACKLOG_STORAGE__LOCATION_DIR sets
// storage.location_dir.
//
// Watcher reports changes of the configuration file so that the server can
// reload users, places and the password without a restart.
package confloader
