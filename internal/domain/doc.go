// Package domain contains the core business entities and validation logic.
package domain
