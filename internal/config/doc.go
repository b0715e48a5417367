// Package config loads the server settings. Values come from built-in
// defaults, then an optional HCL file, then command-line flags in main.
//
// A complete file looks like:
//
//	port          = 8080
//	public_url    = "http://hanoi.local:8080"
//	default_disks = 3
//	move_delay    = "440ms"
//	max_members   = 16
//
//	log {
//	  level  = "info"
//	  format = "text"
//	  file   = "/var/log/hanoi.json"
//	}
package config
