// Package storage provides fiber.Storage implementations for admin
// sessions, one over redis and one over a bun table.
package storage
