// Package pages holds the full HTML pages of the web UI.
package pages
