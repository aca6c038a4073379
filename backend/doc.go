// Package backend provides a bun backed admin.AuthenticationBackend. Admin
// users live in the admin_users table, passwords are hashed with bcrypt and
// a signed JWT is kept in the session once the user logs in.
package backend
