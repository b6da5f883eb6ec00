// Package endpoint exposes approval and form links over HTTP.
package endpoint
