// Package middleware provides gin middleware for the status API.
package middleware
