// Package config provides centralized configuration management.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later ones winning:
//
//  1. Default values
//  2. A YAML file (config.yaml or configs/config.yaml)
//  3. A .env file in the working directory
//  4. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern LOGOS_<SECTION>_<FIELD>:
//
//	LOGOS_SERVER_PORT=8080
//	LOGOS_STORAGE_UPLOADS_DIR=/var/lib/logos/uploads
//	LOGOS_LAYOUT_FILE=/etc/logos/layout.yaml
//	LOGOS_NARRATIVE_PROVIDER=gemini
//	LOGOS_NARRATIVE_API_KEY=...
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
