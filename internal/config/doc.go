// Package config loads todoboard settings from a TOML file.
//
// Load reads ~/.config/todoboard/config.toml unless a path is given. A
// missing file is not an error: every field has a default, and empty values
// in the file also fall back to the default.
//
//	api_url = "http://127.0.0.1:3000"   # base URL of the REST API
//	resource = "todos"                  # collection below api_url
//	request_timeout = "10s"
//	log_level = "info"                  # debug, info, warn, error
//	log_file = "~/.local/state/todoboard/todoboard.log"
//	theme = ""                          # dark or light; empty uses prefs
//
// Paths starting with ~ are expanded to the home directory and made absolute.
// Load fails on unreadable files, TOML syntax errors and durations that do
// not parse or are not positive.
package config
