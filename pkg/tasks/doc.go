// Package tasks manages tasks. A task is created against a team, one of that
// team's members and one of that team's projects.
package tasks
