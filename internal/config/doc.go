// Package config builds the immutable driverman configuration.
//
// Settings are layered, later layers winning:
//
//  1. built-in defaults
//  2. an optional Lua file with a global driverman table
//  3. DRIVERMAN_* environment variables
//  4. command line flags
//
// Each layer produces an Options value whose fields are only Valid when the
// layer set them; Options.Apply merges one layer onto another. Resolve turns
// the merged Options into a validated Config that is then passed by value to
// the rest of the program.
//
// # Lua files
//
// Config files run in a sandboxed gopher-lua VM with only the base, string,
// table and math libraries. A read-only platform table describes the host:
//
//	driverman = {
//	  browser_path = platform.is_windows
//	    and [[C:\Program Files\Google\Chrome\Application\chrome.exe]]
//	    or "/usr/bin/google-chrome",
//	  store_dir = "/opt/driverman",
//	  pinned_version = nil,
//	  timeout = "2m",
//	  proxy = { https = "http://proxy.internal:3128", no_proxy = "localhost" },
//	}
package config
