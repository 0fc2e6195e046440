// Package gcsimage stores task image attachments in a Google Cloud
// Storage bucket and serves them through public object URLs.
package gcsimage
