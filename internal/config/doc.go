// Package config defines the application configuration and its loading.
package config
