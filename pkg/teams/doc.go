// Package teams manages teams and their members.
//
// A team is created by an Admin or Super Admin, who becomes its owner. Members are
// existing users, each at most once per team. Deleting a team cascades to its
// members, projects and tasks.
package teams
