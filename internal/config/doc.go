// Package config handles configuration loading for the techhub server.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${TECHHUB_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//
// Database:
//
//	database:
//	  path: "/var/lib/techhub/techhub.db"
//
// Authentication:
//
//	auth:
//	  jwt_secret: "${TECHHUB_JWT_SECRET}"        # Required, min 32 bytes
//	  master_password: "${TECHHUB_MASTER_PW}"    # Optional admin override credential
//	  token_ttl: "168h"
//
// External tools:
//
//	tools:
//	  config_path: "external_tools_config.json"
//	  watch: true
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
//	cfg, err := config.Load("/etc/techhub/server.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
