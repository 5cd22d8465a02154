// Package projects manages the projects owned by teams.
package projects
